package domain

import "sort"

// Column names of the order export. Matching is exact and case-sensitive.
const (
	ColumnSourceCode  = "Source Code"
	ColumnOrderNum    = "Order Num"
	ColumnWave        = "Wave#"
	ColumnReqShipDate = "Req Ship Date"
	ColumnChute       = "CHUTE"
	ColumnCategory    = "LTL_PCL"
)

// Shipment-method tags carried in ColumnCategory.
const (
	CategoryPCL = "PCL"
	CategoryLTL = "LTL"
)

// InputRow is one exported order row keyed by column header.
type InputRow map[string]Cell

// Get returns the cell for a column, or an absent cell when the key is missing.
func (r InputRow) Get(column string) Cell {
	if r == nil {
		return NullCell()
	}
	return r[column]
}

// Has reports whether the column key is present, even if its value is null.
func (r InputRow) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Columns returns the row's keys in sorted order.
func (r InputRow) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// RequiredColumns lists the headers a summary needs for the given mode, in the
// order they are reported when missing.
func RequiredColumns(mode SummaryMode) []string {
	cols := []string{ColumnSourceCode, ColumnOrderNum, ColumnWave, ColumnReqShipDate, ColumnChute}
	if mode.Normalize() == ModeCategorySplit {
		cols = append(cols, ColumnCategory)
	}
	return cols
}
