// Package app wires the wave summary service together and manages its
// lifecycle.
//
// New builds every component from a config.Config in dependency order:
//
//	1. OpenTelemetry providers and the summary metrics
//	2. Summarizer, source filter and table options from the summary section
//	3. The optional Google Sheets client
//	4. Summary and health services
//	5. The chi router with its middleware chain
//	6. The http.Server
//
// A Sheets client that cannot be created does not stop the server: the
// "sheets" readiness check reports it instead.
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
