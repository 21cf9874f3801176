package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []orderdomain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Raw(`
		SELECT id, shopkeeper_id, supplier_id, org_id, sub_user_id, user_type,
		       order_no, total_amt, approval_status,
		       supplier_delivery_status, shopkeeper_delivery_status,
		       order_date, approved_date, delivered_date, received_date,
		       cgst, sgst, discount, final_amt, invoice_date,
		       created_at, updated_at
		FROM orders
		WHERE id = ?
	`, id).Scan(&order).Error
	if err != nil {
		return orderdomain.Order{}, err
	}
	if order.ID == 0 {
		return orderdomain.Order{}, orderdomain.ErrNotFound
	}
	return order, nil
}

func (r *repo) ItemsByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]orderdomain.OrderItem, error) {
	var items []orderdomain.OrderItem
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListBySupplier(ctx context.Context, db *gorm.DB, supplierID snowflake.ID, filter orderdomain.ListFilter) ([]orderdomain.Order, error) {
	q := db.WithContext(ctx).Where("supplier_id = ?", supplierID)
	return listOrders(applyFilter(q, filter))
}

func (r *repo) ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter orderdomain.ListFilter) ([]orderdomain.Order, error) {
	q := db.WithContext(ctx).Where("org_id = ?", orgID)
	return listOrders(applyFilter(q, filter))
}

func applyFilter(q *gorm.DB, filter orderdomain.ListFilter) *gorm.DB {
	if filter.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", filter.ApprovalStatus)
	} else if filter.NotPending {
		q = q.Where("approval_status <> ?", orderdomain.ApprovalStatusPending)
	}
	if filter.OrderDate != nil {
		start := filter.OrderDate.Truncate(24 * time.Hour)
		q = q.Where("order_date >= ? AND order_date < ?", start, start.Add(24*time.Hour))
	}
	if filter.Year != 0 {
		if filter.Month != 0 {
			start := time.Date(filter.Year, filter.Month, 1, 0, 0, 0, 0, time.UTC)
			q = q.Where("order_date >= ? AND order_date < ?", start, start.AddDate(0, 1, 0))
		} else {
			start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
			q = q.Where("order_date >= ? AND order_date < ?", start, start.AddDate(1, 0, 0))
		}
	}
	if filter.SupplierDelivered != nil {
		q = q.Where("supplier_delivery_status = ?", *filter.SupplierDelivered)
	}
	if filter.ShopkeeperDelivered != nil {
		q = q.Where("shopkeeper_delivery_status = ?", *filter.ShopkeeperDelivered)
	}
	if filter.MinAmt > 0 && filter.MaxAmt > 0 {
		q = q.Where("total_amt BETWEEN ? AND ?", filter.MinAmt, filter.MaxAmt)
	}
	return q
}

func listOrders(q *gorm.DB) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	if err := q.Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateDecision(ctx context.Context, db *gorm.DB, id snowflake.ID, status orderdomain.ApprovalStatus, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(`
		UPDATE orders
		SET approval_status = ?, approved_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND approval_status = ?
	`, status, at, id, orderdomain.ApprovalStatusPending)
	return res.RowsAffected, res.Error
}

func (r *repo) MarkSupplierDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	res := db.WithContext(ctx).Exec(`
		UPDATE orders
		SET supplier_delivery_status = ?, delivered_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, true, at, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orderdomain.ErrNotFound
	}
	return nil
}

func (r *repo) MarkShopkeeperDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	res := db.WithContext(ctx).Exec(`
		UPDATE orders
		SET shopkeeper_delivery_status = ?, received_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, true, at, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orderdomain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateBillTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, cgst, sgst, discount, finalAmt float64, invoiceDate time.Time) error {
	res := db.WithContext(ctx).Exec(`
		UPDATE orders
		SET cgst = ?, sgst = ?, discount = ?, final_amt = ?, invoice_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, cgst, sgst, discount, finalAmt, invoiceDate, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orderdomain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID, quantity int64, productPrice float64) error {
	res := db.WithContext(ctx).Exec(`
		UPDATE order_items
		SET quantity = ?, product_price = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, quantity, productPrice, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orderdomain.ErrNotFound
	}
	return nil
}

func (r *repo) FindExpirable(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := db.WithContext(ctx).
		Where("approval_status = ? AND order_date <= ?", orderdomain.ApprovalStatusPending, cutoff).
		Order("order_date ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
