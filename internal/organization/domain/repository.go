package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	ListByShopkeeper(ctx context.Context, db *gorm.DB, shopkeeperID snowflake.ID) ([]Organization, error)
	Update(ctx context.Context, db *gorm.DB, org *Organization) error

	// FindActiveByShopkeeper returns the shopkeeper's active (trial)
	// organization, or ErrActiveOrgMissing.
	FindActiveByShopkeeper(ctx context.Context, db *gorm.DB, shopkeeperID snowflake.ID) (*Organization, error)

	// SoftDelete flags an inactive organization as deleted. Active
	// organizations are refused.
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
