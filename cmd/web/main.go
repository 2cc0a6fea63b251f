// Command web serves the wave summary HTTP API.
package main

import (
	"log/slog"
	"os"

	"github.com/reondaze-a/automated-wave-priority-sorting/internal/app"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		infrastructure.GetLogger().Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
