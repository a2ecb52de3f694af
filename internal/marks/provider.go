package marks

import (
	"context"
)

// Provider supplies mark prices for symbols whose snapshot carried none.
// Implementations return a price per symbol they could resolve; missing
// symbols are simply absent from the map, not errors.
type Provider interface {
	GetMarks(ctx context.Context, symbols []string) (map[string]float64, error)
	// Name identifies the provider in logs and reports.
	Name() string
}
