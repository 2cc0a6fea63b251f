package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/config"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/dataprocessing"
	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/infrastructure"
	customMiddleware "github.com/reondaze-a/automated-wave-priority-sorting/internal/middleware"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/services"
	handlers "github.com/reondaze-a/automated-wave-priority-sorting/internal/transport/http"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.SummaryMetrics
	ErrorHandler   *apperrors.ErrorHandler
	SummaryService *services.SummaryService
	HealthService  *services.HealthService

	// sheetsErr keeps the Sheets client failure for the readiness check.
	sheetsErr error
}

// NewApplication loads the configuration, installs the process logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an explicit configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateSummaryMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the summary pipeline and health checks
func (a *Application) initializeServices() error {
	summaryCfg := a.Config.Summary

	loc, err := summaryCfg.Location()
	if err != nil {
		return apperrors.NewConfigError("invalid summary time zone", err)
	}

	summarizer := dataprocessing.NewSummarizer(a.Logger, dataprocessing.SummarizerConfig{
		Mode:     summaryCfg.SummaryMode(),
		Location: loc,
	})
	filter := dataprocessing.NewSourceFilter(summaryCfg.SourceColumn, summaryCfg.ExcludeCSV(),
		summaryCfg.CaseInsensitive, summaryCfg.TrimSpaces)
	table := dataprocessing.TableOptions{
		ForceInclude: summaryCfg.ForceInclude,
		SortColumn:   dataprocessing.DefaultTableOptions().SortColumn,
		StartColumn:  summaryCfg.StartColumn,
		EndColumn:    summaryCfg.EndColumn,
	}

	a.SummaryService = services.NewSummaryService(summarizer, filter, table, summaryCfg.SheetName,
		a.Metrics, a.OTelProviders.Tracer, a.Logger)

	if a.Config.Sheets.Enabled() {
		timeout := a.Config.Sheets.Timeout
		if timeout <= 0 {
			timeout = config.DefaultSheetsTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		client, err := dataprocessing.NewSheetsService(ctx, a.Config.Sheets.CredentialsFile)
		cancel()
		if err != nil {
			// The server still serves JSON and workbook requests.
			a.sheetsErr = err
			a.Logger.Warn("Google Sheets source unavailable", slog.String("error", err.Error()))
		} else {
			a.SummaryService.UseSheets(client, a.Config.Sheets.SpreadsheetID)
		}
	}

	a.HealthService = services.NewHealthService(contracts.Version, contracts.BuildTime, a.Logger)
	a.HealthService.RegisterCheck("summarizer", func(context.Context) services.ServiceHealth {
		return services.ServiceHealth{
			Status:  services.StatusReady,
			Message: "mode " + string(a.SummaryService.Mode()),
		}
	})
	a.HealthService.RegisterCheck("sheets", a.sheetsHealth)

	return nil
}

func (a *Application) sheetsHealth(context.Context) services.ServiceHealth {
	switch {
	case !a.Config.Sheets.Enabled():
		return services.ServiceHealth{Status: services.StatusDisabled}
	case a.sheetsErr != nil:
		return services.ServiceHealth{Status: services.StatusNotReady, Message: a.sheetsErr.Error()}
	default:
		return services.ServiceHealth{Status: services.StatusReady}
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Outside the rate limiter so scrapes are never throttled.
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	waveHandler := handlers.NewWaveHandler(a.SummaryService, customMiddleware.NewValidator(a.Logger), a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			if a.Config.Security.RateLimit.Enabled {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.Security.RateLimit.RPS,
					a.Config.Security.RateLimit.Burst,
					a.ErrorHandler,
					a.Logger,
				).Handler)
			}
			r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes))
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.ErrorHandler))

			r.Mount("/waves", waveHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts serving in the background. A listen failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.Server.Addr),
		slog.String("mode", string(a.SummaryService.Mode())),
		slog.Bool("sheets", a.SummaryService.SheetsEnabled()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	if ctx.Err() != nil {
		a.Logger.InfoContext(runCtx, "Received interrupt signal")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
