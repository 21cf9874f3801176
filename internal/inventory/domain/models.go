// Package domain holds the per-organization product catalog. Creating a
// product is metered against the plan's product ceiling; barcode lookups are
// metered separately through the scan counter.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Product struct {
	ID                 snowflake.ID  `gorm:"primaryKey" json:"id"`
	ShopkeeperID       snowflake.ID  `gorm:"not null;index" json:"shopkeeper_id"`
	SubUserID          *snowflake.ID `gorm:"index" json:"sub_user_id,omitempty"`
	OrgID              snowflake.ID  `gorm:"not null;index" json:"org_id"`
	ProductCategory    string        `gorm:"type:text" json:"product_category"`
	ProductBrand       string        `gorm:"type:text" json:"product_brand"`
	ProductModel       string        `gorm:"type:text;not null" json:"product_model"`
	ProductName        string        `gorm:"type:text;not null" json:"product_name"`
	ProductDescription string        `gorm:"type:text" json:"product_description"`
	ProductColor       string        `gorm:"type:text" json:"product_color"`
	ProductPrice       float64       `gorm:"type:numeric(10,2);not null" json:"product_price"`
	HSNCode            string        `gorm:"column:hsn_code;type:text" json:"hsn_code"`
	Barcode            string        `gorm:"type:text;index" json:"barcode"`
	SubCategory        string        `gorm:"type:text" json:"sub_category"`
	Quantity           int64         `gorm:"not null;default:0" json:"quantity"`
	LowStockQuantity   int64         `gorm:"not null;default:0" json:"low_stock_quantity"`
	IsDeleted          bool          `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "inventories" }

var (
	ErrNotFound          = errors.New("product not found")
	ErrBarcodeExists     = errors.New("barcode already registered in organization")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRequest    = errors.New("invalid product request")
)
