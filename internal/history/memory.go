package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository backed by a guarded
// map. It is the default when no database is configured, and is what
// the test suite exercises without a live Postgres instance.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*RunSummary
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[uuid.UUID]*RunSummary)}
}

func (r *MemoryRepository) Create(ctx context.Context, run *RunSummary) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	cp := *run
	r.mu.Lock()
	r.runs[run.ID] = &cp
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context, opts ListOptions) ([]*RunSummary, error) {
	r.mu.RLock()
	matched := make([]*RunSummary, 0, len(r.runs))
	for _, run := range r.runs {
		if matchesFilter(run, opts.Filter) {
			cp := *run
			matched = append(matched, &cp)
		}
	}
	r.mu.RUnlock()

	sortRuns(matched, opts.Sort)

	start := opts.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return matched[start:end], nil
}

func (r *MemoryRepository) BestForInput(ctx context.Context, inputFile string) (*RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *RunSummary
	for _, run := range r.runs {
		if run.InputFile != inputFile {
			continue
		}
		if best == nil || run.TotalCost < best.TotalCost {
			best = run
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.runs, id)
	r.mu.Unlock()
	return nil
}

func matchesFilter(run *RunSummary, f ListFilter) bool {
	if f.InputFile != "" && run.InputFile != f.InputFile {
		return false
	}
	if f.Algorithm != "" && run.Algorithm != f.Algorithm {
		return false
	}
	if !f.Since.IsZero() && run.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

func sortRuns(runs []*RunSummary, order SortOrder) {
	switch order {
	case SortByCreatedAsc:
		sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.Before(runs[j].CreatedAt) })
	case SortByCostAsc:
		sort.Slice(runs, func(i, j int) bool { return runs[i].TotalCost < runs[j].TotalCost })
	default:
		sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	}
}
