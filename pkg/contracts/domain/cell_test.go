package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_String(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"absent", NullCell(), ""},
		{"trimmed text", StringCell("  W-101 \t"), "W-101"},
		{"integer number", NumberCell(45678), "45678"},
		{"fractional number", NumberCell(45678.25), "45678.25"},
		{"negative number", NumberCell(-3), "-3"},
		{"true", BoolCell(true), "true"},
		{"false", BoolCell(false), "false"},
		{"nan", NumberCell(math.NaN()), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func TestCell_Number(t *testing.T) {
	n, ok := NumberCell(12.5).Number()
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	_, ok = StringCell("12.5").Number()
	assert.False(t, ok, "numeric text is not a number cell")

	_, ok = NumberCell(math.Inf(1)).Number()
	assert.False(t, ok)

	_, ok = NullCell().Number()
	assert.False(t, ok)
}

func TestCell_UnmarshalJSON(t *testing.T) {
	var row map[string]Cell
	payload := `{"a":"  x ","b":42,"c":true,"d":null,"e":{"k":[1, 2]},"f":1.5e3}`
	require.NoError(t, json.Unmarshal([]byte(payload), &row))

	assert.Equal(t, CellString, row["a"].Kind())
	assert.Equal(t, "x", row["a"].String())
	assert.Equal(t, "  x ", row["a"].Raw())

	assert.Equal(t, CellNumber, row["b"].Kind())
	assert.Equal(t, "42", row["b"].String())

	assert.Equal(t, CellBool, row["c"].Kind())

	d, present := row["d"]
	assert.True(t, present, "null values keep their key")
	assert.True(t, d.IsAbsent())

	assert.Equal(t, `{"k":[1,2]}`, row["e"].String())
	assert.Equal(t, "1500", row["f"].String())
}

func TestCell_UnmarshalJSONOutOfRange(t *testing.T) {
	var row map[string]Cell
	require.NoError(t, json.Unmarshal([]byte(`{"big":1e400,"small":-1e400}`), &row))

	for _, key := range []string{"big", "small"} {
		assert.Equal(t, CellNumber, row[key].Kind(), key)
		_, ok := row[key].Number()
		assert.False(t, ok, key)
		assert.Equal(t, "", row[key].String(), key)
	}

	data, err := json.Marshal(row["big"])
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestCell_JSONRoundTrip(t *testing.T) {
	in := InputRow{
		ColumnWave:        StringCell("W1"),
		ColumnOrderNum:    NumberCell(1001),
		ColumnReqShipDate: NumberCell(45678),
		ColumnChute:       NullCell(),
		"Rush":            BoolCell(true),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out InputRow
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCellFromValue(t *testing.T) {
	assert.Equal(t, StringCell("a"), CellFromValue("a"))
	assert.Equal(t, NumberCell(3), CellFromValue(3))
	assert.Equal(t, NumberCell(2.5), CellFromValue(json.Number("2.5")))
	assert.Equal(t, BoolCell(true), CellFromValue(true))
	assert.True(t, CellFromValue(nil).IsAbsent())
	assert.Equal(t, `["x"]`, CellFromValue([]string{"x"}).String())
}

func TestInputRow_Get(t *testing.T) {
	row := InputRow{ColumnWave: StringCell("W9")}

	assert.Equal(t, "W9", row.Get(ColumnWave).String())
	assert.True(t, row.Get(ColumnChute).IsAbsent())
	assert.False(t, row.Has(ColumnChute))

	var nilRow InputRow
	assert.True(t, nilRow.Get(ColumnWave).IsAbsent())
}

func TestRequiredColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"Source Code", "Order Num", "Wave#", "Req Ship Date", "CHUTE"},
		RequiredColumns(ModeTotal))
	assert.Equal(t,
		[]string{"Source Code", "Order Num", "Wave#", "Req Ship Date", "CHUTE", "LTL_PCL"},
		RequiredColumns(ModeCategorySplit))
	assert.Equal(t, RequiredColumns(ModeCategorySplit), RequiredColumns("weekly"), "unknown modes are split")
}
