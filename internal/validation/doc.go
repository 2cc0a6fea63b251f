// Package validation checks files at the edges of the pipeline: workbooks
// before excelize opens them (extension, temp-file prefix, zip signature)
// and export targets before a summary is written.
package validation
