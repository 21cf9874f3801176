package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrInvalidRange = errors.New("invalid report date range")

// ViewFilter bounds a sales view. Dates are inclusive of the start day and
// exclusive of the day after the end day.
type ViewFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	ProductName string
}

// InvoiceSummary is one invoice's sales rolled up across its line rows.
// Numbers from the original and estimated lines are both reported.
type InvoiceSummary struct {
	InvoiceNo     string    `json:"invoice_no"`
	InvoiceDate   time.Time `json:"invoice_date"`
	TotalQuantity int64     `json:"total_quantity"`
	TotalAmount   float64   `json:"total_amount"`
	LineCount     int64     `json:"line_count"`
}

// ProductSales is one product's totals over a date range.
type ProductSales struct {
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalAmount   float64 `json:"total_amount"`
}

type Repository interface {
	SalesByInvoice(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ViewFilter) ([]InvoiceSummary, error)
	SalesByProduct(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]ProductSales, error)
}

type Service interface {
	// View returns per-invoice sales aggregates. Each call consumes one
	// daily report-view unit; the read and the counter advance commit
	// together.
	View(ctx context.Context, orgID snowflake.ID, filter ViewFilter) ([]InvoiceSummary, error)

	// Download returns per-product totals over [start, end]. Each call
	// consumes one reports-download unit.
	Download(ctx context.Context, orgID snowflake.ID, start, end time.Time) ([]ProductSales, error)
}
