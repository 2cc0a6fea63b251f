package dataprocessing

import (
	"strings"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// SourceFilter drops rows whose source code is in an exclusion set.
type SourceFilter struct {
	Column          string
	Exclude         []string
	CaseInsensitive bool
	TrimSpaces      bool

	excluded map[string]struct{}
}

// NewSourceFilter builds a filter from a comma-separated exclusion list.
// Empty entries are ignored.
func NewSourceFilter(column, excludeCSV string, caseInsensitive, trimSpaces bool) *SourceFilter {
	if column == "" {
		column = domain.ColumnSourceCode
	}
	f := &SourceFilter{
		Column:          column,
		CaseInsensitive: caseInsensitive,
		TrimSpaces:      trimSpaces,
		excluded:        make(map[string]struct{}),
	}
	for _, v := range strings.Split(excludeCSV, ",") {
		if trimSpaces {
			v = strings.TrimSpace(v)
		}
		if v == "" {
			continue
		}
		f.Exclude = append(f.Exclude, v)
		f.excluded[f.normalize(v)] = struct{}{}
	}
	return f
}

// DefaultSourceFilter excludes "Standard" from the Source Code column,
// ignoring case and surrounding spaces.
func DefaultSourceFilter() *SourceFilter {
	return NewSourceFilter(domain.ColumnSourceCode, "Standard", true, true)
}

func (f *SourceFilter) normalize(s string) string {
	if f.TrimSpaces {
		s = strings.TrimSpace(s)
	}
	if f.CaseInsensitive {
		s = strings.ToLower(s)
	}
	return s
}

// Apply returns the rows to keep. Rows are passed through unchanged when
// there are none or when the first row lacks the filter column.
func (f *SourceFilter) Apply(rows []domain.InputRow) []domain.InputRow {
	if len(rows) == 0 || !rows[0].Has(f.Column) {
		return rows
	}

	kept := make([]domain.InputRow, 0, len(rows))
	for _, row := range rows {
		if _, drop := f.excluded[f.normalize(row.Get(f.Column).Raw())]; drop {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// FilterJSON filters a JSON row payload. A payload that is not a row array
// is returned verbatim so the next stage can report it.
func (f *SourceFilter) FilterJSON(payload string) string {
	rows, err := DecodeRows([]byte(payload))
	if err != nil {
		return payload
	}
	data, err := EncodeRows(f.Apply(rows))
	if err != nil {
		return payload
	}
	return string(data)
}
