package dataprocessing

import (
	"context"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// RowSource supplies exported order rows. The summarizer does not care how
// they were produced.
type RowSource interface {
	Rows(ctx context.Context) ([]domain.InputRow, error)
	// Kind names the source for logs and metrics, e.g. "excel".
	Kind() string
}

// StaticRows is a RowSource over rows already in memory.
type StaticRows []domain.InputRow

// Rows implements RowSource.
func (s StaticRows) Rows(context.Context) ([]domain.InputRow, error) { return s, nil }

// Kind implements RowSource.
func (StaticRows) Kind() string { return "static" }
