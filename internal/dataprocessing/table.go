package dataprocessing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// TableOptions controls how a worksheet grid becomes rows.
type TableOptions struct {
	// ForceInclude lists headers kept even when the column has no data.
	ForceInclude []string
	// SortColumn orders the output A to Z ignoring case, blanks last.
	// Empty disables sorting.
	SortColumn string
	// StartColumn and EndColumn bound the read window, e.g. "A" and "AB".
	StartColumn string
	EndColumn   string
}

// DefaultTableOptions reads A:AB, keeps CHUTE and sorts by it.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		ForceInclude: []string{domain.ColumnChute},
		SortColumn:   domain.ColumnChute,
		StartColumn:  "A",
		EndColumn:    "AB",
	}
}

// NormalizeHeader collapses runs of whitespace, including non-breaking
// spaces, to a single space and trims the result.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildRows converts a grid whose first row holds headers into order rows.
//
// Columns without any non-blank data cell are dropped unless force-included.
// Blank cells are left out of the row and text is trimmed. Rows left empty
// are dropped. Grids with fewer than two rows yield no rows.
func BuildRows(grid [][]domain.Cell, opts TableOptions) []domain.InputRow {
	if len(grid) <= 1 {
		return []domain.InputRow{}
	}

	headers := make([]string, len(grid[0]))
	for j, h := range grid[0] {
		headers[j] = NormalizeHeader(h.Raw())
	}

	forced := make(map[string]bool, len(opts.ForceInclude))
	for _, name := range opts.ForceInclude {
		forced[name] = true
	}

	var active []int
	for j, name := range headers {
		if forced[name] || columnHasData(grid[1:], j) {
			active = append(active, j)
		}
	}

	rows := make([]domain.InputRow, 0, len(grid)-1)
	for _, line := range grid[1:] {
		row := domain.InputRow{}
		for _, j := range active {
			if j >= len(line) || line[j].IsBlank() {
				continue
			}
			row[headers[j]] = line[j].Trimmed()
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	if opts.SortColumn != "" {
		sortByColumn(rows, opts.SortColumn)
	}
	return rows
}

func columnHasData(lines [][]domain.Cell, j int) bool {
	for _, line := range lines {
		if j < len(line) && !line[j].IsBlank() {
			return true
		}
	}
	return false
}

// sortByColumn is a stable, case-insensitive, blanks-last sort.
func sortByColumn(rows []domain.InputRow, column string) {
	col := collate.New(language.Und, collate.IgnoreCase)
	key := func(r domain.InputRow) string {
		return strings.ToLower(r.Get(column).String())
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		switch {
		case a == "" || b == "":
			return a != "" && b == ""
		default:
			return col.CompareString(a, b) < 0
		}
	})
}
