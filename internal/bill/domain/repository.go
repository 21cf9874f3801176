package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows a bill listing. InvoiceDate matches on the calendar day.
type ListFilter struct {
	InventoryID  snowflake.ID
	InvoiceDate  *time.Time
	CustomerName string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bill *CustomerBill) error
	ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]CustomerBill, error)

	// FindByNumber returns every line row carrying the number in the given
	// namespace column.
	FindByNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, billType BillType, number string) ([]CustomerBill, error)
}
