package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. WAVES_SERVER_PORT.
const EnvPrefix = "WAVES"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Summary   SummaryConfig   `yaml:"summary" envconfig:"SUMMARY"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// Address returns the listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// SummaryConfig holds the defaults applied to every summary run.
type SummaryConfig struct {
	Mode            string   `yaml:"mode" envconfig:"MODE"`
	SheetName       string   `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	StartColumn     string   `yaml:"start_column" envconfig:"START_COLUMN"`
	EndColumn       string   `yaml:"end_column" envconfig:"END_COLUMN"`
	ForceInclude    []string `yaml:"force_include" envconfig:"FORCE_INCLUDE"`
	SourceColumn    string   `yaml:"source_column" envconfig:"SOURCE_COLUMN"`
	Exclude         []string `yaml:"exclude" envconfig:"EXCLUDE"`
	CaseInsensitive bool     `yaml:"case_insensitive" envconfig:"CASE_INSENSITIVE"`
	TrimSpaces      bool     `yaml:"trim_spaces" envconfig:"TRIM_SPACES"`
	TimeZone        string   `yaml:"time_zone" envconfig:"TIME_ZONE"`
}

// SummaryMode returns the parsed mode. Call after validate.
func (s SummaryConfig) SummaryMode() domain.SummaryMode {
	mode, err := domain.ParseSummaryMode(s.Mode)
	if err != nil {
		return domain.ModeCategorySplit
	}
	return mode
}

// Location resolves TimeZone. An empty value selects the host's local zone.
func (s SummaryConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(s.TimeZone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.TimeZone)
}

// ExcludeCSV joins Exclude the way the filter expects it.
func (s SummaryConfig) ExcludeCSV() string {
	return strings.Join(s.Exclude, ",")
}

// SheetsConfig configures the Google Sheets row source.
type SheetsConfig struct {
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// Enabled reports whether enough is configured to call the Sheets API.
func (s SheetsConfig) Enabled() bool {
	return s.SpreadsheetID != "" && s.CredentialsFile != ""
}

// TelemetryConfig controls OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TracingExporter string `yaml:"tracing_exporter" envconfig:"TRACING_EXPORTER"`
	MetricsEnabled  bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, the first config file found,
// and WAVES_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML onto cfg; keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max body bytes must be positive")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if _, err := domain.ParseSummaryMode(c.Summary.Mode); err != nil {
		return err
	}
	if _, err := c.Summary.Location(); err != nil {
		return fmt.Errorf("invalid summary time zone %q: %w", c.Summary.TimeZone, err)
	}
	if strings.TrimSpace(c.Summary.SourceColumn) == "" {
		return fmt.Errorf("summary source column must not be empty")
	}

	switch c.Telemetry.TracingExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("invalid tracing exporter: %q", c.Telemetry.TracingExporter)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Summary: SummaryConfig{
			Mode:            string(domain.ModeCategorySplit),
			SheetName:       DefaultSheetName,
			StartColumn:     DefaultStartColumn,
			EndColumn:       DefaultEndColumn,
			ForceInclude:    []string{domain.ColumnChute},
			SourceColumn:    domain.ColumnSourceCode,
			Exclude:         []string{DefaultExcludedSource},
			CaseInsensitive: true,
			TrimSpaces:      true,
		},
		Sheets: SheetsConfig{
			Timeout: DefaultSheetsTimeout,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     AppName,
			TracingExporter: "none",
			MetricsEnabled:  true,
		},
	}
}
