// internal/storage/report/interface.go
package report

import (
	"context"
	"time"

	"github.com/newthinker/sigma/internal/backtest"
)

// Entry is a stored report together with its store-assigned identity.
type Entry struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Report    *backtest.Report `json:"report"`
}

// ListFilter narrows the reports returned by List.
type ListFilter struct {
	Symbol   string
	Strategy string
	Offset   int
	Limit    int
}

// Store defines the interface for report persistence.
type Store interface {
	// Save stores a report and returns its assigned ID.
	Save(ctx context.Context, r *backtest.Report) (string, error)

	// GetByID retrieves a stored report by ID.
	GetByID(ctx context.Context, id string) (*Entry, error)

	// List returns stored reports matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// Delete removes a stored report by ID.
	Delete(ctx context.Context, id string) error
}
