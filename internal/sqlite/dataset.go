package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/repository"
)

// DatasetRepository stores the fiscal-year KPI dataset. It implements
// dashboard.DatasetProvider.
type DatasetRepository struct {
	db *DB
}

// NewDatasetRepository creates a new DatasetRepository
func NewDatasetRepository(db *DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Save replaces the stored dataset with ds
func (r *DatasetRepository) Save(ctx context.Context, ds *kpi.Dataset) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"kpi_values", "annual_budgets", "months", "kpi_definitions", "dataset_meta"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_meta (id, fiscal_year, current_month) VALUES (1, ?, ?)`,
			ds.FiscalYear, ds.CurrentMonth,
		); err != nil {
			return fmt.Errorf("failed to save dataset meta: %w", err)
		}

		for i, def := range ds.Definitions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kpi_definitions (id, position, name, unit, category, is_higher_better)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				def.ID, i, def.Name, def.Unit, def.Category, def.IsHigherBetter,
			); err != nil {
				return fmt.Errorf("failed to save kpi definition %s: %w", def.ID, err)
			}
		}

		position := make(map[kpi.MonthKey]int, len(ds.MonthOrder))
		for i, m := range ds.MonthOrder {
			position[m] = i
		}
		for _, rec := range ds.Months {
			pos, ok := position[rec.Month]
			if !ok {
				return fmt.Errorf("%w: month %s", kpi.ErrUnknownMonth, rec.Month)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO months (month, position, label, is_closed) VALUES (?, ?, ?, ?)`,
				rec.Month, pos, rec.Label, rec.IsClosed,
			); err != nil {
				return fmt.Errorf("failed to save month %s: %w", rec.Month, err)
			}
			for id, v := range rec.KPIs {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO kpi_values (month, kpi_id, actual, budget) VALUES (?, ?, ?, ?)`,
					rec.Month, id, v.Actual, v.Budget,
				); err != nil {
					if isForeignKeyViolation(err) {
						return &kpi.MissingReferenceError{Kind: "kpi definition", ID: string(id)}
					}
					return fmt.Errorf("failed to save kpi value: %w", err)
				}
			}
		}

		for id, amount := range ds.AnnualBudgets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO annual_budgets (kpi_id, amount) VALUES (?, ?)`, id, amount,
			); err != nil {
				if isForeignKeyViolation(err) {
					return &kpi.MissingReferenceError{Kind: "kpi definition", ID: string(id)}
				}
				return fmt.Errorf("failed to save annual budget: %w", err)
			}
		}
		return nil
	})
}

// LoadDataset reads the stored dataset
func (r *DatasetRepository) LoadDataset(ctx context.Context) (*kpi.Dataset, error) {
	ds := &kpi.Dataset{AnnualBudgets: map[kpi.ID]float64{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT fiscal_year, current_month FROM dataset_meta WHERE id = 1`,
	).Scan(&ds.FiscalYear, &ds.CurrentMonth)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset meta: %w", err)
	}

	if err := r.loadDefinitions(ctx, ds); err != nil {
		return nil, err
	}
	if err := r.loadMonths(ctx, ds); err != nil {
		return nil, err
	}
	if err := r.loadValues(ctx, ds); err != nil {
		return nil, err
	}
	if err := r.loadBudgets(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (r *DatasetRepository) loadDefinitions(ctx context.Context, ds *kpi.Dataset) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, unit, category, is_higher_better FROM kpi_definitions ORDER BY position`)
	if err != nil {
		return fmt.Errorf("failed to load kpi definitions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var def kpi.Definition
		if err := rows.Scan(&def.ID, &def.Name, &def.Unit, &def.Category, &def.IsHigherBetter); err != nil {
			return fmt.Errorf("failed to scan kpi definition: %w", err)
		}
		ds.Definitions = append(ds.Definitions, def)
	}
	return rows.Err()
}

func (r *DatasetRepository) loadMonths(ctx context.Context, ds *kpi.Dataset) error {
	rows, err := r.db.QueryContext(ctx, `SELECT month, label, is_closed FROM months ORDER BY position`)
	if err != nil {
		return fmt.Errorf("failed to load months: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := kpi.MonthRecord{KPIs: map[kpi.ID]kpi.Value{}}
		if err := rows.Scan(&rec.Month, &rec.Label, &rec.IsClosed); err != nil {
			return fmt.Errorf("failed to scan month: %w", err)
		}
		ds.MonthOrder = append(ds.MonthOrder, rec.Month)
		ds.Months = append(ds.Months, rec)
	}
	return rows.Err()
}

func (r *DatasetRepository) loadValues(ctx context.Context, ds *kpi.Dataset) error {
	index := make(map[kpi.MonthKey]int, len(ds.Months))
	for i, rec := range ds.Months {
		index[rec.Month] = i
	}

	rows, err := r.db.QueryContext(ctx, `SELECT month, kpi_id, actual, budget FROM kpi_values`)
	if err != nil {
		return fmt.Errorf("failed to load kpi values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			month  kpi.MonthKey
			id     kpi.ID
			actual sql.NullFloat64
			v      kpi.Value
		)
		if err := rows.Scan(&month, &id, &actual, &v.Budget); err != nil {
			return fmt.Errorf("failed to scan kpi value: %w", err)
		}
		if actual.Valid {
			a := actual.Float64
			v.Actual = &a
			v.VarianceRate = kpi.VarianceRate(a, v.Budget)
		}
		ds.Months[index[month]].KPIs[id] = v
	}
	return rows.Err()
}

func (r *DatasetRepository) loadBudgets(ctx context.Context, ds *kpi.Dataset) error {
	rows, err := r.db.QueryContext(ctx, `SELECT kpi_id, amount FROM annual_budgets`)
	if err != nil {
		return fmt.Errorf("failed to load annual budgets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id kpi.ID
		var amount float64
		if err := rows.Scan(&id, &amount); err != nil {
			return fmt.Errorf("failed to scan annual budget: %w", err)
		}
		ds.AnnualBudgets[id] = amount
	}
	return rows.Err()
}
