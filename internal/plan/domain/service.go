package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service exposes the read-mostly plan registry.
type Service interface {
	List(ctx context.Context) ([]Plan, error)
	GetByID(ctx context.Context, id snowflake.ID) (Plan, error)
	// CeilingFor resolves the ceiling of a dimension under the given plan.
	CeilingFor(ctx context.Context, planID snowflake.ID, dim Dimension) (int, error)
}
