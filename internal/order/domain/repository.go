package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows an order listing. OrderDate matches the calendar day;
// Month/Year match the order date's calendar month or year. Delivery filters
// are tri-state: nil means no filter.
type ListFilter struct {
	ApprovalStatus      ApprovalStatus
	NotPending          bool
	OrderDate           *time.Time
	Month               time.Month
	Year                int
	SupplierDelivered   *bool
	ShopkeeperDelivered *bool
	MinAmt              float64
	MaxAmt              float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (Order, error)
	ItemsByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderItem, error)
	ListBySupplier(ctx context.Context, db *gorm.DB, supplierID snowflake.ID, filter ListFilter) ([]Order, error)
	ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]Order, error)

	// UpdateDecision moves a Pending order to the given terminal status. It
	// reports zero rows if the order is missing or already decided.
	UpdateDecision(ctx context.Context, db *gorm.DB, id snowflake.ID, status ApprovalStatus, at time.Time) (int64, error)

	MarkSupplierDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	MarkShopkeeperDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateBillTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, cgst, sgst, discount, finalAmt float64, invoiceDate time.Time) error
	UpdateItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID, quantity int64, productPrice float64) error

	// FindExpirable returns Pending orders placed at or before cutoff.
	FindExpirable(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]Order, error)
}
