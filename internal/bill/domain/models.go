// Package domain defines customer billing. A bill request with N line items
// persists N rows sharing one invoice number; original and estimated bills
// draw their numbers from two independent lines over the same table.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillType selects the numbering line a bill draws from.
type BillType string

const (
	BillTypeOriginal  BillType = "original"
	BillTypeEstimated BillType = "estimated"
)

func (t BillType) Valid() bool {
	return t == BillTypeOriginal || t == BillTypeEstimated
}

// CustomerBill is one line item of a bill. Rows created by the same request
// share customer fields, totals and the invoice number.
type CustomerBill struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	ShopkeeperID     snowflake.ID  `gorm:"not null;index" json:"shopkeeper_id"`
	SubUserID        *snowflake.ID `json:"sub_user_id,omitempty"`
	OrgID            snowflake.ID  `gorm:"not null;index" json:"org_id"`
	CustomerName     string        `gorm:"type:text" json:"customer_name"`
	CustomerPhone    string        `gorm:"type:text" json:"customer_phone"`
	CustomerGST      string        `gorm:"column:customer_gst;type:text" json:"customer_gst,omitempty"`
	CustomerAddress  string        `gorm:"type:text" json:"customer_address"`
	InvoiceNo        *string       `gorm:"index" json:"invoice_no,omitempty"`
	EstimatedInvoice *string       `gorm:"index" json:"estimated_invoice,omitempty"`
	IsValidBill      bool          `gorm:"not null;default:false;index" json:"is_valid_bill"`
	InvoiceDate      time.Time     `gorm:"not null" json:"invoice_date"`
	InventoryID      snowflake.ID  `gorm:"not null;index" json:"inventory_id"`
	ProductName      string        `gorm:"type:text;not null" json:"product_name"`
	ProductModel     string        `gorm:"type:text" json:"product_model"`
	Quantity         int64         `gorm:"not null" json:"quantity"`
	ProductPrice     float64       `gorm:"not null" json:"product_price"`
	IMEI1            string        `gorm:"column:imei1;type:text" json:"imei1,omitempty"`
	IMEI2            string        `gorm:"column:imei2;type:text" json:"imei2,omitempty"`
	Amount           float64       `json:"amount"`
	ProductTotal     float64       `gorm:"not null" json:"product_total"`
	Discount         float64       `json:"discount"`
	SGST             float64       `gorm:"column:sgst" json:"sgst"`
	CGST             float64       `gorm:"column:cgst" json:"cgst"`
	FinalTotal       float64       `gorm:"not null" json:"final_total"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerBill) TableName() string { return "customer_bills" }

var (
	ErrNotFound       = errors.New("customer bill not found")
	ErrInvalidRequest = errors.New("invalid bill request")
	ErrNoLineItems    = errors.New("bill requires at least one line item")
)
