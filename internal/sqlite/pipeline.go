package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/pipeline"
)

// PipelineRepository stores pipeline stages and opportunities. It implements
// dashboard.PipelineProvider.
type PipelineRepository struct {
	db *DB
}

// NewPipelineRepository creates a new PipelineRepository
func NewPipelineRepository(db *DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

// Save replaces the stored pipeline with snap
func (r *PipelineRepository) Save(ctx context.Context, snap *pipeline.Snapshot) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pipeline_items`); err != nil {
			return fmt.Errorf("failed to clear pipeline items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pipeline_stages`); err != nil {
			return fmt.Errorf("failed to clear pipeline stages: %w", err)
		}

		for i, st := range snap.Stages {
			if st.Probability < 0 || st.Probability > 100 {
				return fmt.Errorf("%w: stage %s", pipeline.ErrInvalidProbability, st.ID)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pipeline_stages (id, position, name, probability, high_confidence)
				 VALUES (?, ?, ?, ?, ?)`,
				st.ID, i, st.Name, st.Probability, st.HighConfidence,
			); err != nil {
				return fmt.Errorf("failed to save stage %s: %w", st.ID, err)
			}
		}

		for _, item := range snap.Items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pipeline_items (id, amount, stage, expected_close_month, customer, owner)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				item.ID, item.Amount.String(), item.Stage, item.ExpectedCloseMonth, item.Customer, item.Owner,
			); err != nil {
				if isForeignKeyViolation(err) {
					return &pipeline.MissingReferenceError{ItemID: item.ID, Stage: item.Stage}
				}
				return fmt.Errorf("failed to save pipeline item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

// LoadPipeline reads the stored stages in declaration order and every item
func (r *PipelineRepository) LoadPipeline(ctx context.Context) (*pipeline.Snapshot, error) {
	snap := &pipeline.Snapshot{}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, probability, high_confidence FROM pipeline_stages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}
	for rows.Next() {
		var st pipeline.Stage
		if err := rows.Scan(&st.ID, &st.Name, &st.Probability, &st.HighConfidence); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		snap.Stages = append(snap.Stages, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage rows: %w", err)
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT id, amount, stage, expected_close_month, customer, owner FROM pipeline_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item pipeline.Item
		if err := rows.Scan(&item.ID, &item.Amount, &item.Stage, &item.ExpectedCloseMonth, &item.Customer, &item.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline item: %w", err)
		}
		snap.Items = append(snap.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipeline rows: %w", err)
	}
	return snap, nil
}
