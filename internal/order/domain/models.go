package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "Pending"
	ApprovalStatusApproved ApprovalStatus = "Approved"
	ApprovalStatusRejected ApprovalStatus = "Rejected"
	ApprovalStatusExpired  ApprovalStatus = "Expired"
)

// Decision statuses a supplier may set. Expired is reserved for the sweep.
func (s ApprovalStatus) Decision() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusExpired:
		return true
	}
	return false
}

// DeliverySide names which party confirms delivery of an approved order.
type DeliverySide string

const (
	DeliverySideSupplier   DeliverySide = "supplier"
	DeliverySideShopkeeper DeliverySide = "shopkeeper"
)

func (s DeliverySide) Valid() bool {
	return s == DeliverySideSupplier || s == DeliverySideShopkeeper
}

// Order is a shopkeeper's purchase request to a supplier. OrderNo is issued
// per supplier from the max existing row; the unique index on
// (supplier_id, order_no) is the backstop for concurrent allocation.
type Order struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	ShopkeeperID snowflake.ID  `gorm:"not null;index" json:"shopkeeper_id"`
	SupplierID   snowflake.ID  `gorm:"not null;uniqueIndex:ux_orders_supplier_no,priority:1" json:"supplier_id"`
	OrgID        snowflake.ID  `gorm:"not null;index" json:"org_id"`
	SubUserID    *snowflake.ID `gorm:"index" json:"sub_user_id,omitempty"`
	UserType     string        `gorm:"type:text" json:"user_type,omitempty"`

	OrderNo  string  `gorm:"column:order_no;type:text;not null;uniqueIndex:ux_orders_supplier_no,priority:2" json:"order_no"`
	TotalAmt float64 `gorm:"not null" json:"total_amt"`

	ApprovalStatus           ApprovalStatus `gorm:"type:text;not null;default:Pending;index" json:"approval_status"`
	SupplierDeliveryStatus   bool           `gorm:"not null;default:false" json:"supplier_delivery_status"`
	ShopkeeperDeliveryStatus bool           `gorm:"not null;default:false" json:"shopkeeper_delivery_status"`

	OrderDate     time.Time  `gorm:"not null;index" json:"order_date"`
	ApprovedDate  *time.Time `json:"approved_date,omitempty"`
	DeliveredDate *time.Time `json:"delivered_date,omitempty"`
	ReceivedDate  *time.Time `json:"received_date,omitempty"`

	CGST        float64    `gorm:"column:cgst" json:"cgst"`
	SGST        float64    `gorm:"column:sgst" json:"sgst"`
	Discount    float64    `json:"discount"`
	FinalAmt    float64    `gorm:"column:final_amt" json:"final_amt"`
	InvoiceDate *time.Time `json:"invoice_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one supplier-catalog line on an order.
type OrderItem struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID           snowflake.ID `gorm:"not null;index" json:"order_id"`
	SupplierProductID snowflake.ID `gorm:"not null" json:"supplier_product_id"`
	Quantity          int64        `gorm:"not null" json:"quantity"`
	ProductPrice      float64      `json:"product_price"`
	CreatedAt         time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
