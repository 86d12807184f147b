// Package history persists a summary of each completed pipeline run —
// which tree won, what it cost, and which sizer found it — so repeated
// invocations against the same network can be compared without
// re-deriving history from log files (SPEC_FULL §4.8). Grounded on the
// teacher's services/history-svc/internal/repository package.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup finds no matching run.
var ErrNotFound = errors.New("history: run not found")

// ViolationCounts tallies how many arcs in the winning design tripped
// each soft-penalty category, for at-a-glance quality comparison
// across runs without re-parsing the full report.
type ViolationCounts struct {
	LowVelocity      int
	HighVelocity     int
	OverFillRatio    int
	ShallowCover     int
	DeepCover        int
	ProgressiveForce int
	Infeasible       int
}

// RunSummary is the persisted record of one completed pipeline
// invocation (SPEC_FULL §4.8, §12 GLOSSARY).
type RunSummary struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	InputFile  string
	NodeCount  int
	EdgeCount  int
	Algorithm  string
	Iterations int
	Seed       int64

	TreeSignature string
	CQ            float64
	TotalCost     float64
	Violations    ViolationCounts
}

// ListFilter narrows a List query. The zero value matches everything.
type ListFilter struct {
	InputFile string
	Algorithm string
	Since     time.Time
}

// SortOrder controls how List orders its results.
type SortOrder int

const (
	SortByCreatedDesc SortOrder = iota
	SortByCreatedAsc
	SortByCostAsc
)

// ListOptions paginates and orders a List call.
type ListOptions struct {
	Filter ListFilter
	Sort   SortOrder
	Limit  int
	Offset int
}

// Repository stores and retrieves RunSummary records. Implementations
// must be safe for concurrent use. The driver persists one summary per
// run, for the winning layout, after all candidate sizing has finished.
type Repository interface {
	// Create persists a new RunSummary, assigning ID and CreatedAt if
	// they are zero-valued.
	Create(ctx context.Context, run *RunSummary) error
	// GetByID returns the run with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*RunSummary, error)
	// List returns runs matching opts, most relevant first.
	List(ctx context.Context, opts ListOptions) ([]*RunSummary, error)
	// BestForInput returns the lowest-cost run ever recorded for a
	// given input file, or ErrNotFound if none exist.
	BestForInput(ctx context.Context, inputFile string) (*RunSummary, error)
	// Delete removes a run by ID. Deleting a missing ID is not an
	// error.
	Delete(ctx context.Context, id uuid.UUID) error
}
