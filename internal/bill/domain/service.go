package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// LineItem is one product sold on a bill.
type LineItem struct {
	InventoryID  snowflake.ID `json:"inventory_id"`
	ProductName  string       `json:"product_name"`
	ProductModel string       `json:"product_model"`
	Quantity     int64        `json:"quantity"`
	ProductPrice float64      `json:"product_price"`
	IMEI1        string       `json:"imei1,omitempty"`
	IMEI2        string       `json:"imei2,omitempty"`
}

type CreateBillRequest struct {
	ShopkeeperID    snowflake.ID  `json:"shopkeeper_id"`
	SubUserID       *snowflake.ID `json:"sub_user_id,omitempty"`
	OrgID           snowflake.ID  `json:"org_id"`
	BillType        BillType      `json:"bill_type"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerGST     string        `json:"customer_gst"`
	CustomerAddress string        `json:"customer_address"`
	InvoiceDate     time.Time     `json:"invoice_date"`
	ProductTotal    float64       `json:"product_total"`
	Discount        float64       `json:"discount"`
	SGST            float64       `json:"sgst"`
	CGST            float64       `json:"cgst"`
	FinalTotal      float64       `json:"final_total"`
	Items           []LineItem    `json:"items"`
}

type Service interface {
	// Create persists one row per line item, all carrying the next number in
	// the organization's original or estimated line. Each line consumes one
	// bill-creation unit and decrements its product's stock; the whole
	// request commits or rolls back as a unit.
	Create(ctx context.Context, req CreateBillRequest) ([]CustomerBill, error)

	ListByOrg(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]CustomerBill, error)
	GetByNumber(ctx context.Context, orgID snowflake.ID, billType BillType, number string) ([]CustomerBill, error)
}
