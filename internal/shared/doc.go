// Package shared groups helpers used across the wave summary packages.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - order row fixtures
//   - a workbook writer for tests that read .xlsx files
//
// Only test support and domain-free helpers belong here.
package shared
