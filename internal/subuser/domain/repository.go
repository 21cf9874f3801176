package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subUser *SubUser) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SubUser, error)
	ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]SubUser, error)
	Update(ctx context.Context, db *gorm.DB, subUser *SubUser) error

	// ManagerExists reports whether the organization already has a
	// non-deleted Manager.
	ManagerExists(ctx context.Context, db *gorm.DB, shopkeeperID, orgID snowflake.ID) (bool, error)

	// SoftDelete flags one sub user as deleted.
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// SoftDeleteByOrg flags every sub user of an organization as deleted.
	// Used when the organization itself is removed.
	SoftDeleteByOrg(ctx context.Context, db *gorm.DB, shopkeeperID, orgID snowflake.ID) (int64, error)
}
