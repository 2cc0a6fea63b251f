package config

import (
	"time"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts"
)

// Application constants
const (
	AppName    = "wave-summary"
	AppVersion = contracts.Version
)

// Defaults
const (
	DefaultLogFile        = "logs/app.log"
	DefaultRateLimit      = 20 // requests per second
	DefaultBurstSize      = 40
	DefaultMaxBodyBytes   = 32 << 20
	DefaultRequestTimeout = 60 * time.Second
	DefaultSheetsTimeout  = 30 * time.Second

	DefaultSheetName      = "Sheet1"
	DefaultStartColumn    = "A"
	DefaultEndColumn      = "AB"
	DefaultExcludedSource = "Standard"
)
