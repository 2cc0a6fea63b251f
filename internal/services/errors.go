package services

import (
	"errors"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
)

// appErrorMessage returns the user-facing message of an AppError, or the
// plain error text for anything else.
func appErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
