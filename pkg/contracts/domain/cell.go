package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKind identifies which variant a Cell holds.
type CellKind uint8

const (
	CellAbsent CellKind = iota
	CellString
	CellNumber
	CellBool
)

// String returns a readable name for the kind.
func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	default:
		return "absent"
	}
}

// Cell is a single spreadsheet value as it arrives in an exported row.
// Rows are untyped on input, so a cell is one of: absent (missing or null),
// text, a number, or a boolean. All consumers go through String and Number
// instead of switching on the raw JSON.
type Cell struct {
	kind CellKind
	text string
	num  float64
	flag bool
}

// NullCell returns an absent cell.
func NullCell() Cell { return Cell{} }

// StringCell wraps text. The text is kept verbatim; trimming happens on read.
func StringCell(s string) Cell { return Cell{kind: CellString, text: s} }

// NumberCell wraps a numeric value.
func NumberCell(f float64) Cell { return Cell{kind: CellNumber, num: f} }

// BoolCell wraps a boolean value.
func BoolCell(b bool) Cell { return Cell{kind: CellBool, flag: b} }

// CellFromValue converts a decoded value (as produced by encoding/json or a
// spreadsheet API) into a Cell.
func CellFromValue(v interface{}) Cell {
	switch val := v.(type) {
	case nil:
		return NullCell()
	case Cell:
		return val
	case string:
		return StringCell(val)
	case bool:
		return BoolCell(val)
	case float64:
		return NumberCell(val)
	case float32:
		return NumberCell(float64(val))
	case int:
		return NumberCell(float64(val))
	case int64:
		return NumberCell(float64(val))
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return NumberCell(f)
		}
		return StringCell(val.String())
	default:
		if b, err := json.Marshal(val); err == nil {
			return StringCell(string(b))
		}
		return StringCell(fmt.Sprintf("%v", val))
	}
}

// Kind reports the variant held by the cell.
func (c Cell) Kind() CellKind { return c.kind }

// IsAbsent reports whether the cell is missing or null.
func (c Cell) IsAbsent() bool { return c.kind == CellAbsent }

// String returns the canonical trimmed text of the cell.
func (c Cell) String() string {
	switch c.kind {
	case CellString:
		return strings.TrimSpace(c.text)
	case CellNumber:
		return formatNumber(c.num)
	case CellBool:
		return strconv.FormatBool(c.flag)
	default:
		return ""
	}
}

// Raw returns the text exactly as supplied for string cells, and String()
// for every other kind.
func (c Cell) Raw() string {
	if c.kind == CellString {
		return c.text
	}
	return c.String()
}

// Number returns the numeric value for finite number cells.
func (c Cell) Number() (float64, bool) {
	if c.kind != CellNumber || math.IsNaN(c.num) || math.IsInf(c.num, 0) {
		return 0, false
	}
	return c.num, true
}

// IsBlank reports whether the canonical text is empty.
func (c Cell) IsBlank() bool { return c.String() == "" }

// Trimmed returns a copy of a string cell with surrounding whitespace removed.
func (c Cell) Trimmed() Cell {
	if c.kind == CellString {
		return StringCell(strings.TrimSpace(c.text))
	}
	return c
}

// MarshalJSON writes the cell back as the JSON scalar it came from.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellString:
		return json.Marshal(c.text)
	case CellNumber:
		if _, ok := c.Number(); !ok {
			return []byte("null"), nil
		}
		return []byte(formatNumber(c.num)), nil
	case CellBool:
		return json.Marshal(c.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value. Nested objects and arrays are kept as
// their compact JSON text.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*c = NullCell()
		return nil
	}

	switch data[0] {
	case 'n':
		*c = NullCell()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringCell(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = BoolCell(b)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*c = StringCell(buf.String())
	default:
		// Out-of-range literals such as 1e400 become ±Inf; they never match a
		// date and marshal back as null.
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("invalid cell value %q: %w", string(data), err)
		}
		*c = NumberCell(f)
	}
	return nil
}

func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
