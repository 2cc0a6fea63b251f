package exporter

import "strconv"

// formatInt formats a count for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
