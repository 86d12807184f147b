package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sewernet/internal/database"
)

// PostgresRepository persists RunSummary records in a "run_summaries"
// table managed by the goose migrations under internal/history/migrations.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository wraps an existing database connection.
func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, run *RunSummary) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO run_summaries (
			id, created_at, input_file, node_count, edge_count,
			algorithm, iterations, seed, tree_signature, cq, total_cost,
			v_low_velocity, v_high_velocity, v_over_fill_ratio,
			v_shallow_cover, v_deep_cover, v_progressive_force, v_infeasible
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	// Runs through database.WithTransaction rather than a bare Exec: a
	// design run with duplicate-looking inputs (same input_file re-run)
	// still inserts as a new row, and rolling the insert back on error
	// keeps a failed Create from ever leaving a half-written summary for
	// BestForInput to pick up.
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			run.ID, run.CreatedAt, run.InputFile, run.NodeCount, run.EdgeCount,
			run.Algorithm, run.Iterations, run.Seed, run.TreeSignature, run.CQ, run.TotalCost,
			run.Violations.LowVelocity, run.Violations.HighVelocity, run.Violations.OverFillRatio,
			run.Violations.ShallowCover, run.Violations.DeepCover, run.Violations.ProgressiveForce,
			run.Violations.Infeasible,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("history: insert run summary: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*RunSummary, error) {
	const query = selectColumns + ` WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	run, err := scanRunSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get run summary: %w", err)
	}
	return run, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*RunSummary, error) {
	where, args := buildWhereClause(opts.Filter)
	query := selectColumns + where + buildOrderBy(opts.Sort)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list run summaries: %w", err)
	}
	defer rows.Close()

	var runs []*RunSummary
	for rows.Next() {
		run, err := scanRunSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan run summary: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate run summaries: %w", err)
	}
	return runs, nil
}

func (r *PostgresRepository) BestForInput(ctx context.Context, inputFile string) (*RunSummary, error) {
	const query = selectColumns + ` WHERE input_file = $1 ORDER BY total_cost ASC LIMIT 1`

	row := r.db.QueryRow(ctx, query, inputFile)
	run, err := scanRunSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: best for input: %w", err)
	}
	return run, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM run_summaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("history: delete run summary: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, created_at, input_file, node_count, edge_count,
		algorithm, iterations, seed, tree_signature, cq, total_cost,
		v_low_velocity, v_high_velocity, v_over_fill_ratio,
		v_shallow_cover, v_deep_cover, v_progressive_force, v_infeasible
	FROM run_summaries`

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(row rowScanner) (*RunSummary, error) {
	run := &RunSummary{}
	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.InputFile, &run.NodeCount, &run.EdgeCount,
		&run.Algorithm, &run.Iterations, &run.Seed, &run.TreeSignature, &run.CQ, &run.TotalCost,
		&run.Violations.LowVelocity, &run.Violations.HighVelocity, &run.Violations.OverFillRatio,
		&run.Violations.ShallowCover, &run.Violations.DeepCover, &run.Violations.ProgressiveForce,
		&run.Violations.Infeasible,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// buildWhereClause assembles a dynamic WHERE clause for List, mirroring
// the teacher's repository filter-building style.
func buildWhereClause(f ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.InputFile != "" {
		args = append(args, f.InputFile)
		clauses = append(clauses, fmt.Sprintf("input_file = $%d", len(args)))
	}
	if f.Algorithm != "" {
		args = append(args, f.Algorithm)
		clauses = append(clauses, fmt.Sprintf("algorithm = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildOrderBy(order SortOrder) string {
	switch order {
	case SortByCreatedAsc:
		return " ORDER BY created_at ASC"
	case SortByCostAsc:
		return " ORDER BY total_cost ASC"
	default:
		return " ORDER BY created_at DESC"
	}
}
