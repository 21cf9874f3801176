package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/pkg/db/pagination"
)

type CreateProductRequest struct {
	ShopkeeperID       snowflake.ID  `json:"shopkeeper_id"`
	SubUserID          *snowflake.ID `json:"sub_user_id,omitempty"`
	OrgID              snowflake.ID  `json:"org_id"`
	ProductCategory    string        `json:"product_category"`
	ProductBrand       string        `json:"product_brand"`
	ProductModel       string        `json:"product_model"`
	ProductName        string        `json:"product_name"`
	ProductDescription string        `json:"product_description"`
	ProductColor       string        `json:"product_color"`
	ProductPrice       float64       `json:"product_price"`
	HSNCode            string        `json:"hsn_code"`
	Barcode            string        `json:"barcode"`
	SubCategory        string        `json:"sub_category"`
	Quantity           int64         `json:"quantity"`
	LowStockQuantity   int64         `json:"low_stock_quantity"`
}

type UpdateProductRequest struct {
	ProductCategory    string   `json:"product_category"`
	ProductBrand       string   `json:"product_brand"`
	ProductModel       string   `json:"product_model"`
	ProductName        string   `json:"product_name"`
	ProductDescription string   `json:"product_description"`
	ProductColor       string   `json:"product_color"`
	ProductPrice       *float64 `json:"product_price,omitempty"`
	HSNCode            string   `json:"hsn_code"`
	SubCategory        string   `json:"sub_category"`
	Quantity           *int64   `json:"quantity,omitempty"`
	LowStockQuantity   *int64   `json:"low_stock_quantity,omitempty"`
}

type Service interface {
	// Create adds a catalog product under the plan's product ceiling. A
	// barcode may appear at most once per organization.
	Create(ctx context.Context, req CreateProductRequest) (*Product, error)

	GetByID(ctx context.Context, id snowflake.ID) (*Product, error)

	// GetByBarcode resolves a product by its barcode without charging the
	// scan counter; RecordBarcodeScan meters the scan itself.
	GetByBarcode(ctx context.Context, orgID snowflake.ID, barcode string) (*Product, error)

	List(ctx context.Context, orgID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]Product, pagination.PageInfo, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// RecordBarcodeScan charges one barcode scan against the organization's
	// plan ceiling.
	RecordBarcodeScan(ctx context.Context, orgID snowflake.ID) error
}
