package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

func strCells(values ...string) []domain.Cell {
	out := make([]domain.Cell, len(values))
	for i, v := range values {
		out[i] = domain.StringCell(v)
	}
	return out
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "Req Ship Date", NormalizeHeader("  Req Ship   Date\t"))
	assert.Equal(t, "Wave#", NormalizeHeader("Wave#"))
	assert.Equal(t, "", NormalizeHeader("   "))
}

func TestBuildRows(t *testing.T) {
	grid := [][]domain.Cell{
		strCells("Wave#", " Order Num ", "Notes", "CHUTE"),
		strCells("W1", " 1001 ", "", "b"),
		strCells("W2", "1002", "", ""),
		strCells("", "", "", ""),
		strCells("W3", "1003", "  ", "A"),
		strCells("W4"),
	}

	rows := BuildRows(grid, DefaultTableOptions())
	require.Len(t, rows, 4)

	assert.Equal(t, domain.InputRow{
		domain.ColumnWave:     domain.StringCell("W3"),
		domain.ColumnOrderNum: domain.StringCell("1003"),
		domain.ColumnChute:    domain.StringCell("A"),
	}, rows[0])
	assert.Equal(t, "W1", rows[1].Get(domain.ColumnWave).String())
	assert.Equal(t, "1001", rows[1].Get(domain.ColumnOrderNum).Raw(), "text is trimmed")
	assert.Equal(t, []string{"W2", "W4"}, []string{
		rows[2].Get(domain.ColumnWave).String(),
		rows[3].Get(domain.ColumnWave).String(),
	}, "rows without a chute sort last in input order")

	for _, r := range rows {
		assert.False(t, r.Has("Notes"), "empty column dropped")
	}
}

func TestBuildRows_ForceInclude(t *testing.T) {
	grid := [][]domain.Cell{
		strCells("Wave#", "CHUTE", "Spare"),
		strCells("W1", "", ""),
	}

	rows := BuildRows(grid, TableOptions{ForceInclude: []string{"CHUTE", "Spare"}})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Wave#"}, rows[0].Columns(), "blank cells stay out even for forced columns")

	noData := [][]domain.Cell{
		strCells("CHUTE"),
		strCells(""),
	}
	assert.Empty(t, BuildRows(noData, DefaultTableOptions()))
}

func TestBuildRows_KeepsCellKinds(t *testing.T) {
	grid := [][]domain.Cell{
		strCells("Wave#", "Req Ship Date", "Hazmat"),
		{domain.NumberCell(7), domain.NumberCell(45730), domain.BoolCell(false)},
	}

	rows := BuildRows(grid, TableOptions{})
	require.Len(t, rows, 1)
	assert.Equal(t, domain.NumberCell(45730), rows[0].Get(domain.ColumnReqShipDate))
	assert.Equal(t, domain.BoolCell(false), rows[0].Get("Hazmat"))
	assert.Equal(t, "7", rows[0].Get(domain.ColumnWave).String())
}

func TestBuildRows_ShortGrids(t *testing.T) {
	assert.Equal(t, []domain.InputRow{}, BuildRows(nil, DefaultTableOptions()))
	assert.Equal(t, []domain.InputRow{}, BuildRows([][]domain.Cell{strCells("Wave#")}, DefaultTableOptions()))
}

func TestBuildRows_SortIgnoresCase(t *testing.T) {
	grid := [][]domain.Cell{
		strCells("CHUTE", "Order Num"),
		strCells("delta", "1"),
		strCells("Bravo", "2"),
		strCells("", "3"),
		strCells("alpha", "4"),
		strCells("BRAVO", "5"),
	}

	rows := BuildRows(grid, DefaultTableOptions())
	var orders []string
	for _, r := range rows {
		orders = append(orders, r.Get(domain.ColumnOrderNum).String())
	}
	assert.Equal(t, []string{"4", "2", "5", "1", "3"}, orders)
}
