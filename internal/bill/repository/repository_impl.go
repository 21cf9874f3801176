package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() billdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bill *billdomain.CustomerBill) error {
	return db.WithContext(ctx).Create(bill).Error
}

func (r *repo) ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter billdomain.ListFilter) ([]billdomain.CustomerBill, error) {
	q := db.WithContext(ctx).Where("org_id = ?", orgID)

	if filter.InventoryID != 0 {
		q = q.Where("inventory_id = ?", filter.InventoryID)
	}
	if filter.InvoiceDate != nil {
		q = q.Where("DATE(invoice_date) = DATE(?)", filter.InvoiceDate)
	}
	if name := strings.TrimSpace(filter.CustomerName); name != "" {
		q = q.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var bills []billdomain.CustomerBill
	if err := q.Order("id ASC").Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, billType billdomain.BillType, number string) ([]billdomain.CustomerBill, error) {
	column := "invoice_no"
	if billType == billdomain.BillTypeEstimated {
		column = "estimated_invoice"
	}

	var bills []billdomain.CustomerBill
	err := db.WithContext(ctx).
		Where("org_id = ? AND "+column+" = ?", orgID, number).
		Order("id ASC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, billdomain.ErrNotFound
	}
	return bills, nil
}
