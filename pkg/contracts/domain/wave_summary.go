package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SummaryMode selects the output shape of a wave summary.
type SummaryMode string

const (
	// ModeTotal reports a single distinct-order count per wave.
	ModeTotal SummaryMode = "total"
	// ModeCategorySplit reports PCL and LTL distinct-order counts per wave.
	ModeCategorySplit SummaryMode = "split"
)

// ParseSummaryMode maps user input to a SummaryMode. Empty input selects
// ModeCategorySplit.
func ParseSummaryMode(s string) (SummaryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "split", "pcl_ltl", "category":
		return ModeCategorySplit, nil
	case "total", "single":
		return ModeTotal, nil
	default:
		return "", fmt.Errorf("unknown summary mode %q", s)
	}
}

// Normalize resolves aliases and maps unknown or empty modes to
// ModeCategorySplit.
func (m SummaryMode) Normalize() SummaryMode {
	if mode, err := ParseSummaryMode(string(m)); err == nil {
		return mode
	}
	return ModeCategorySplit
}

// Output column names of a WaveSummaryRow.
const (
	FieldWave          = "Wave #"
	FieldOrderCount    = "Order Count"
	FieldPCLOrderCount = "PCL Order Count"
	FieldLTLOrderCount = "LTL Order Count"
	FieldSourceCodes   = "Source Codes"
	FieldInducted      = "Inducted ?"
	FieldReqShipDate   = "Req Ship Date"
)

// InductedMarker is written to the Inducted column for inducted waves.
const InductedMarker = "✓"

// WaveSummaryRow is one output line of a wave summary.
//
// Only the count fields of the row's Mode are serialized: OrderCount for
// ModeTotal, PCLOrderCount and LTLOrderCount for ModeCategorySplit.
type WaveSummaryRow struct {
	Mode          SummaryMode
	Wave          string
	OrderCount    int
	PCLOrderCount int
	LTLOrderCount int
	SourceCodes   string
	Inducted      string
	ReqShipDate   string
}

// PrimaryCount is the count rows are ranked by.
func (r WaveSummaryRow) PrimaryCount() int {
	if r.Mode == ModeTotal {
		return r.OrderCount
	}
	return r.PCLOrderCount
}

// IsInducted reports whether the row carries the inducted marker.
func (r WaveSummaryRow) IsInducted() bool {
	return r.Inducted == InductedMarker
}

// MarshalJSON emits the columns in spreadsheet order.
func (r WaveSummaryRow) MarshalJSON() ([]byte, error) {
	type kv struct {
		key   string
		value interface{}
	}
	fields := []kv{{FieldWave, r.Wave}}
	if r.Mode == ModeTotal {
		fields = append(fields, kv{FieldOrderCount, r.OrderCount})
	} else {
		fields = append(fields,
			kv{FieldPCLOrderCount, r.PCLOrderCount},
			kv{FieldLTLOrderCount, r.LTLOrderCount},
		)
	}
	fields = append(fields,
		kv{FieldSourceCodes, r.SourceCodes},
		kv{FieldInducted, r.Inducted},
		kv{FieldReqShipDate, r.ReqShipDate},
	)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads either output shape. The mode is inferred from which
// count columns are present.
func (r *WaveSummaryRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		Wave        string `json:"Wave #"`
		OrderCount  *int   `json:"Order Count"`
		PCLCount    *int   `json:"PCL Order Count"`
		LTLCount    *int   `json:"LTL Order Count"`
		SourceCodes string `json:"Source Codes"`
		Inducted    string `json:"Inducted ?"`
		ReqShipDate string `json:"Req Ship Date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = WaveSummaryRow{
		Mode:        ModeCategorySplit,
		Wave:        raw.Wave,
		SourceCodes: raw.SourceCodes,
		Inducted:    raw.Inducted,
		ReqShipDate: raw.ReqShipDate,
	}
	if raw.OrderCount != nil && raw.PCLCount == nil && raw.LTLCount == nil {
		r.Mode = ModeTotal
		r.OrderCount = *raw.OrderCount
		return nil
	}
	if raw.PCLCount != nil {
		r.PCLOrderCount = *raw.PCLCount
	}
	if raw.LTLCount != nil {
		r.LTLOrderCount = *raw.LTLCount
	}
	return nil
}

// SummaryResult is the envelope returned for every summary request.
// It is always complete: callers branch on Success and show Message.
type SummaryResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Rows    []WaveSummaryRow `json:"rows"`
}

// NewSummaryFailure builds an unsuccessful envelope with no rows.
func NewSummaryFailure(message string) SummaryResult {
	return SummaryResult{Success: false, Message: message, Rows: []WaveSummaryRow{}}
}

// NewSummaryNotice builds a successful envelope that has nothing to report.
func NewSummaryNotice(message string) SummaryResult {
	return SummaryResult{Success: true, Message: message, Rows: []WaveSummaryRow{}}
}

// MarshalJSON guarantees rows is encoded as an array.
func (s SummaryResult) MarshalJSON() ([]byte, error) {
	type alias SummaryResult
	out := alias(s)
	if out.Rows == nil {
		out.Rows = []WaveSummaryRow{}
	}
	return json.Marshal(out)
}
