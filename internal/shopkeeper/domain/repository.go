package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, shopkeeper *Shopkeeper) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Shopkeeper, error)
	UpdateCurrentPlan(ctx context.Context, db *gorm.DB, id, planID snowflake.ID) error

	// UpdateTrialWindow stamps the trial period opened by activating the
	// shopkeeper's first organization.
	UpdateTrialWindow(ctx context.Context, db *gorm.DB, id snowflake.ID, start, expiry time.Time) error
}
