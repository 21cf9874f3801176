package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	"gorm.io/gorm"
)

// Repository persists tracker rows. Every method takes the *gorm.DB it should
// run on so callers can pass a transaction handle.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tracker *PlanTracker) error

	// FindByOrgID loads the tracker row for an organization, taking a row
	// lock when the handle is transactional. Returns ErrTrackerNotFound
	// when no row exists.
	FindByOrgID(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*PlanTracker, error)

	// SumForShopkeeper totals one counter across every tracker row owned by
	// the shopkeeper. Zero rows sum to zero.
	SumForShopkeeper(ctx context.Context, db *gorm.DB, shopkeeperID snowflake.ID, dim plandomain.Dimension) (int, error)

	// Increment adds by to each listed counter on one tracker row.
	Increment(ctx context.Context, db *gorm.DB, trackerID snowflake.ID, dims []plandomain.Dimension, by int) error

	// Decrement releases by units of one counter on one tracker row when the
	// counted resource is removed.
	Decrement(ctx context.Context, db *gorm.DB, trackerID snowflake.ID, dim plandomain.Dimension, by int) error

	// BulkReset zeroes one counter across all tracker rows and reports how
	// many rows were touched.
	BulkReset(ctx context.Context, db *gorm.DB, dim plandomain.Dimension) (int64, error)
}
