package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/internal/shared/testutil"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

func orderGrid() [][]interface{} {
	return [][]interface{}{
		{"Source Code", "Order Num", "Wave#", "Req Ship Date", "CHUTE", "LTL_PCL", "Notes"},
		{"AMZ", "1001", "W1", 45730, "c2", "PCL", ""},
		{"Standard", "1002", "W1", 45730, nil, "LTL", nil},
		{"WEB", 1003, "W2", "2025-03-14", "C1", "PCL", nil},
		{nil, nil, nil, nil, nil, nil, nil},
	}
}

func TestExcelSource_Rows(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Orders", orderGrid())
	logger, handler := testutil.NewTestLogger(t)

	src := NewExcelFileSource(logger, path, "Orders", DefaultTableOptions())
	assert.Equal(t, "excel", src.Kind())

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Sorted by chute, blanks last.
	assert.Equal(t, "C1", rows[0].Get(domain.ColumnChute).String())
	assert.Equal(t, "c2", rows[1].Get(domain.ColumnChute).String())
	assert.False(t, rows[2].Has(domain.ColumnChute))

	first := rows[1]
	assert.Equal(t, domain.CellString, first.Get(domain.ColumnOrderNum).Kind(), "text digits stay text")
	assert.Equal(t, domain.NumberCell(45730), first.Get(domain.ColumnReqShipDate))
	assert.Equal(t, domain.NumberCell(1003), rows[0].Get(domain.ColumnOrderNum))
	assert.False(t, first.Has("Notes"))

	assert.True(t, handler.ContainsMessage("worksheet rows extracted"))
}

func TestExcelSource_FeedsSummarizer(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Orders", orderGrid())
	rows, err := NewExcelFileSource(nil, path, "Orders", DefaultTableOptions()).Rows(context.Background())
	require.NoError(t, err)

	s := newTestSummarizer(t, domain.ModeCategorySplit)
	result := s.Summarize(context.Background(), DefaultSourceFilter().Apply(rows), "2025-03-14")

	require.True(t, result.Success, result.Message)
	require.Len(t, result.Rows, 2)
	for _, r := range result.Rows {
		assert.Equal(t, 1, r.PCLOrderCount)
		assert.Equal(t, 0, r.LTLOrderCount)
	}
}

func TestExcelSource_MissingSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Orders", orderGrid())

	_, err := NewExcelFileSource(nil, path, "Sheet9", DefaultTableOptions()).Rows(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Contains(t, err.Error(), `worksheet "Sheet9" not found`)
}

func TestExcelSource_NotAWorkbook(t *testing.T) {
	src := NewExcelReaderSource(nil, strings.NewReader("plain text"), "upload.xlsx", "Orders", DefaultTableOptions())

	_, err := src.Rows(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestExcelSource_ColumnWindow(t *testing.T) {
	grid := [][]interface{}{
		{"Wave#", "Order Num", "CHUTE"},
		{"W1", "1", "C1"},
	}
	path := testutil.WriteWorkbook(t, "Sheet1", grid)

	rows, err := NewExcelFileSource(nil, path, "Sheet1", TableOptions{StartColumn: "A", EndColumn: "B"}).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Order Num", "Wave#"}, rows[0].Columns())

	rows, err = NewExcelFileSource(nil, path, "Sheet1", TableOptions{StartColumn: "B", EndColumn: "C"}).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"CHUTE", "Order Num"}, rows[0].Columns())

	_, err = NewExcelFileSource(nil, path, "Sheet1", TableOptions{StartColumn: "C", EndColumn: "A"}).Rows(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestExcelSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExcelFileSource(nil, "unused.xlsx", "Orders", DefaultTableOptions()).Rows(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// cancelAfter reports cancellation once Err has been checked n times.
type cancelAfter struct {
	context.Context
	n, calls int
}

func (c *cancelAfter) Err() error {
	c.calls++
	if c.calls > c.n {
		return context.Canceled
	}
	return nil
}

func TestExcelSource_CanceledBetweenRows(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Orders", orderGrid())
	ctx := &cancelAfter{Context: context.Background(), n: 2}

	rows, err := NewExcelFileSource(nil, path, "Orders", DefaultTableOptions()).Rows(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rows)
	assert.Equal(t, 3, ctx.calls, "stops at the second worksheet row")
}
