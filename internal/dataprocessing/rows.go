package dataprocessing

import (
	"bytes"
	"encoding/json"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// Messages reported when a payload is not a row array.
const (
	MsgNotRowArray   = "Input JSON does not contain an array of rows."
	msgInvalidPrefix = "Invalid JSON: "
)

// DecodeRows reads a JSON row payload. Two shapes are accepted: an array of
// objects, or an object whose "rows" member is such an array.
//
// Failures are *errors.AppError values of type PARSING whose Message is
// the user-facing text.
func DecodeRows(payload []byte) ([]domain.InputRow, error) {
	var top json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, apperrors.NewParsingError(msgInvalidPrefix+err.Error(), err)
	}

	elems, ok := rowElements(top)
	if !ok {
		var wrapper map[string]json.RawMessage
		if firstByte(top) != '{' || json.Unmarshal(top, &wrapper) != nil {
			return nil, apperrors.NewParsingError(MsgNotRowArray, nil)
		}
		if elems, ok = rowElements(wrapper["rows"]); !ok {
			return nil, apperrors.NewParsingError(MsgNotRowArray, nil)
		}
	}

	rows := make([]domain.InputRow, 0, len(elems))
	for _, elem := range elems {
		var row domain.InputRow
		if err := json.Unmarshal(elem, &row); err != nil {
			return nil, apperrors.NewParsingError(msgInvalidPrefix+err.Error(), err)
		}
		if row == nil {
			row = domain.InputRow{}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowElements returns the elements of raw when it is an array whose
// elements are all objects.
func rowElements(raw json.RawMessage) ([]json.RawMessage, bool) {
	if firstByte(raw) != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	for _, e := range elems {
		if firstByte(e) != '{' {
			return nil, false
		}
	}
	return elems, true
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// EncodeRows writes rows as a JSON array. A nil slice encodes as [].
func EncodeRows(rows []domain.InputRow) ([]byte, error) {
	if rows == nil {
		rows = []domain.InputRow{}
	}
	return json.Marshal(rows)
}
