package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppValidationError("target date is malformed"),
			want: "[VALIDATION] target date is malformed",
		},
		{
			name: "with cause",
			err:  NewParsingError("cannot open workbook", fmt.Errorf("zip: not a valid zip file")),
			want: "[PARSING] cannot open workbook: zip: not a valid zip file",
		},
		{
			name: "not found",
			err:  NewNotFoundError(`sheet "Orders"`),
			want: `[NOT_FOUND] sheet "Orders" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSourceError("sheets API call failed", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("summarize: %w", err)
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeSource, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewStorageError("read failed", nil).
		WithContext("path", "/tmp/orders.xlsx").
		WithContext("attempt", 2)

	assert.Equal(t, "/tmp/orders.xlsx", err.Context["path"])
	assert.Equal(t, 2, err.Context["attempt"])

	bare := &AppError{Type: ErrTypeConfig}
	bare.WithContext("key", "value")
	assert.Equal(t, "value", bare.Context["key"])
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("load: %w", NewConfigError("bad port", nil))

	assert.True(t, IsType(err, ErrTypeConfig))
	assert.False(t, IsType(err, ErrTypeNotFound))
	assert.False(t, IsType(errors.New("plain"), ErrTypeConfig))
	assert.False(t, IsType(nil, ErrTypeConfig))
}
