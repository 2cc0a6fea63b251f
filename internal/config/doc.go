// Package config loads the wave summary service configuration.
//
// Values are resolved in this order, later sources winning:
//
//	1. Default()
//	2. config.yaml or configs/config.yaml, when present
//	3. WAVES_* environment variables
//
// Environment variables follow the struct layout, for example:
//
//	WAVES_SERVER_PORT=9090
//	WAVES_LOGGING_LEVEL=debug
//	WAVES_SUMMARY_MODE=total
//	WAVES_SUMMARY_EXCLUDE=Standard,Internal
//	WAVES_SHEETS_SPREADSHEET_ID=1AbC...
//
// Load validates the result; an invalid port, log level, summary mode or
// time zone is reported as an error rather than silently corrected.
package config
