package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows a catalog listing. Empty fields match everything.
type ListFilter struct {
	Categories  []string
	Brands      []string
	Colors      []string
	SearchQuery string
	LowStock    bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByBarcode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, barcode string) (*Product, error)
	BarcodeExists(ctx context.Context, db *gorm.DB, orgID snowflake.ID, barcode string) (bool, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]Product, pagination.PageInfo, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// DecrementStock subtracts qty from a product's quantity, refusing to go
	// below zero. Billing runs it inside its own transaction.
	DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int64) error
}
