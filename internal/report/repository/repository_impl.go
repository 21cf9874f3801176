package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	reportdomain "github.com/shopstack/shopstack/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() reportdomain.Repository {
	return &repo{}
}

func (r *repo) SalesByInvoice(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter reportdomain.ViewFilter) ([]reportdomain.InvoiceSummary, error) {
	where := "org_id = ?"
	args := []any{orgID}

	if filter.StartDate != nil && filter.EndDate != nil {
		where += " AND invoice_date >= ? AND invoice_date < ?"
		args = append(args,
			filter.StartDate.Truncate(24*time.Hour),
			filter.EndDate.Truncate(24*time.Hour).Add(24*time.Hour),
		)
	}
	if name := strings.TrimSpace(filter.ProductName); name != "" {
		where += " AND LOWER(product_name) LIKE ?"
		args = append(args, "%"+strings.ToLower(name)+"%")
	}

	var summaries []reportdomain.InvoiceSummary
	err := db.WithContext(ctx).Raw(`
		SELECT COALESCE(invoice_no, estimated_invoice) AS invoice_no,
		       MIN(invoice_date)                       AS invoice_date,
		       SUM(quantity)                           AS total_quantity,
		       SUM(amount)                             AS total_amount,
		       COUNT(*)                                AS line_count
		FROM customer_bills
		WHERE `+where+`
		GROUP BY COALESCE(invoice_no, estimated_invoice)
		ORDER BY invoice_date DESC
	`, args...).Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *repo) SalesByProduct(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]reportdomain.ProductSales, error) {
	var sales []reportdomain.ProductSales
	err := db.WithContext(ctx).Raw(`
		SELECT product_name,
		       SUM(quantity) AS total_quantity,
		       SUM(amount)   AS total_amount
		FROM customer_bills
		WHERE org_id = ? AND invoice_date >= ? AND invoice_date < ?
		GROUP BY product_name
		ORDER BY total_amount DESC
	`, orgID, start.Truncate(24*time.Hour), end.Truncate(24*time.Hour).Add(24*time.Hour)).Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
