package fixture

import (
	"context"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/domain/user"
)

// DatasetStore persists a dataset snapshot.
type DatasetStore interface {
	Save(ctx context.Context, ds *kpi.Dataset) error
}

// PipelineStore persists a pipeline snapshot.
type PipelineStore interface {
	Save(ctx context.Context, snap *pipeline.Snapshot) error
}

// UserRegistrar stores directory entries.
type UserRegistrar interface {
	Register(ctx context.Context, u user.User) (*user.User, error)
}

// Stores are the seed targets. Nil targets are skipped.
type Stores struct {
	Datasets  DatasetStore
	Pipelines PipelineStore
	Users     UserRegistrar
}

// SeedResult counts what was written.
type SeedResult struct {
	Months        int `json:"months"`
	Definitions   int `json:"definitions"`
	PipelineItems int `json:"pipeline_items"`
	Users         int `json:"users"`
}

// Seed writes the bundle into stores. Datasets and pipelines replace what is
// stored; users are upserted.
func Seed(ctx context.Context, b *Bundle, stores Stores) (SeedResult, error) {
	var res SeedResult

	if stores.Users != nil {
		for _, u := range b.Users {
			if _, err := stores.Users.Register(ctx, u); err != nil {
				return res, fmt.Errorf("seed user %s: %w", u.ID, err)
			}
			res.Users++
		}
	}

	if stores.Datasets != nil {
		if err := stores.Datasets.Save(ctx, b.Dataset); err != nil {
			return res, fmt.Errorf("seed dataset: %w", err)
		}
		res.Months = len(b.Dataset.Months)
		res.Definitions = len(b.Dataset.Definitions)
	}

	if stores.Pipelines != nil {
		if err := stores.Pipelines.Save(ctx, b.Pipeline); err != nil {
			return res, fmt.Errorf("seed pipeline: %w", err)
		}
		res.PipelineItems = len(b.Pipeline.Items)
	}

	return res, nil
}
