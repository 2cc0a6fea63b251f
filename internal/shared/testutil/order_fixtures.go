package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// OrderRow builds an export row. An empty chute is stored as a null cell
// and an empty category leaves the column out.
func OrderRow(source, order, wave, shipDate, chute, category string) domain.InputRow {
	row := domain.InputRow{
		domain.ColumnSourceCode:  domain.StringCell(source),
		domain.ColumnOrderNum:    domain.StringCell(order),
		domain.ColumnWave:        domain.StringCell(wave),
		domain.ColumnReqShipDate: domain.StringCell(shipDate),
	}
	if chute != "" {
		row[domain.ColumnChute] = domain.StringCell(chute)
	} else {
		row[domain.ColumnChute] = domain.NullCell()
	}
	if category != "" {
		row[domain.ColumnCategory] = domain.StringCell(category)
	}
	return row
}

// WriteWorkbook saves grid as the named sheet of a fresh .xlsx file in a
// temporary directory and returns its path. grid[0] is the header row.
func WriteWorkbook(t *testing.T, sheet string, grid [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("create sheet: %v", err)
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			t.Fatalf("delete default sheet: %v", err)
		}
	}

	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "orders.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
