package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type OrderLine struct {
	SupplierProductID snowflake.ID `json:"supplier_product_id"`
	Quantity          int64        `json:"quantity"`
	ProductPrice      float64      `json:"product_price"`
}

type MakeOrderRequest struct {
	ShopkeeperID snowflake.ID  `json:"shopkeeper_id"`
	SupplierID   snowflake.ID  `json:"supplier_id"`
	OrgID        snowflake.ID  `json:"org_id"`
	SubUserID    *snowflake.ID `json:"sub_user_id,omitempty"`
	UserType     string        `json:"user_type,omitempty"`
	TotalAmt     float64       `json:"total_amt"`
	Items        []OrderLine   `json:"items"`
}

// BillTotalsRequest carries the tax breakup a supplier fills in when turning
// an approved order into a billable invoice.
type BillTotalsRequest struct {
	CGST     float64 `json:"cgst"`
	SGST     float64 `json:"sgst"`
	Discount float64 `json:"discount"`
	FinalAmt float64 `json:"final_amt"`

	Items []ItemRevision `json:"items"`
}

type ItemRevision struct {
	ID           snowflake.ID `json:"id"`
	Quantity     int64        `json:"quantity"`
	ProductPrice float64      `json:"product_price"`
}

type Service interface {
	// Make creates the order and its line items in one guarded transaction:
	// the monthly order ceiling is checked, the order number is issued from
	// the supplier's partition, and the counters advance with the commit.
	Make(ctx context.Context, req MakeOrderRequest) (Order, []OrderItem, error)

	GetByID(ctx context.Context, id snowflake.ID) (Order, []OrderItem, error)
	ListBySupplier(ctx context.Context, supplierID snowflake.ID, filter ListFilter) ([]Order, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]Order, error)

	// Decide records the supplier's verdict on a Pending order. Approved and
	// Rejected are the only admissible statuses; both are terminal.
	Decide(ctx context.Context, orderID snowflake.ID, status ApprovalStatus) (Order, error)

	// MarkDelivered flips one side's delivery flag on an Approved order.
	// The flag is one-way; confirming twice is a no-op.
	MarkDelivered(ctx context.Context, orderID snowflake.ID, side DeliverySide) (Order, error)

	UpdateBillTotals(ctx context.Context, orderID snowflake.ID, req BillTotalsRequest) error

	// ExpireStale moves Pending orders older than threshold to Expired.
	// Each order is expired independently; one bad row is logged and
	// skipped, never aborting the sweep. Returns the number expired.
	ExpireStale(ctx context.Context, threshold time.Duration) (int, error)
}
