package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	"github.com/shopstack/shopstack/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() inventorydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *inventorydomain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*inventorydomain.Product, error) {
	var product inventorydomain.Product
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, inventorydomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindByBarcode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, barcode string) (*inventorydomain.Product, error) {
	var product inventorydomain.Product
	err := db.WithContext(ctx).
		Where("org_id = ? AND barcode = ? AND is_deleted = ?", orgID, barcode, false).
		Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, inventorydomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) BarcodeExists(ctx context.Context, db *gorm.DB, orgID snowflake.ID, barcode string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM inventories
		 WHERE org_id = ? AND barcode = ? AND is_deleted = ?`,
		orgID, barcode, false,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter inventorydomain.ListFilter, page pagination.Pagination) ([]inventorydomain.Product, pagination.PageInfo, error) {
	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}

	q := db.WithContext(ctx).
		Where("org_id = ? AND is_deleted = ?", orgID, false)

	if len(filter.Categories) > 0 {
		q = q.Where("product_category IN ?", filter.Categories)
	}
	if len(filter.Brands) > 0 {
		q = q.Where("product_brand IN ?", filter.Brands)
	}
	if len(filter.Colors) > 0 {
		q = q.Where("product_color IN ?", filter.Colors)
	}
	if s := strings.TrimSpace(filter.SearchQuery); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(product_name) LIKE ? OR LOWER(product_model) LIKE ? OR LOWER(product_brand) LIKE ?",
			like, like, like,
		)
	}
	if filter.LowStock {
		q = q.Where("quantity <= low_stock_quantity")
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, pagination.PageInfo{}, fmt.Errorf("invalid page token: %w", err)
		}
		q = q.Where("id > ?", cursor.ID)
	}

	var products []inventorydomain.Product
	if err := q.Order("id ASC").Limit(limit + 1).Find(&products).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	rows, info := pagination.Page(products, limit, func(p inventorydomain.Product) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: p.ID.String()})
		return token
	})
	return rows, info, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *inventorydomain.Product) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE inventories SET
			product_category = ?, product_brand = ?, product_model = ?,
			product_name = ?, product_description = ?, product_color = ?,
			product_price = ?, hsn_code = ?, sub_category = ?,
			quantity = ?, low_stock_quantity = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = ?`,
		product.ProductCategory,
		product.ProductBrand,
		product.ProductModel,
		product.ProductName,
		product.ProductDescription,
		product.ProductColor,
		product.ProductPrice,
		product.HSNCode,
		product.SubCategory,
		product.Quantity,
		product.LowStockQuantity,
		product.UpdatedAt,
		product.ID,
		false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventorydomain.ErrNotFound
	}
	return nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE inventories SET is_deleted = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_deleted = ?`,
		true, id, false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventorydomain.ErrNotFound
	}
	return nil
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int64) error {
	if qty <= 0 {
		return nil
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE inventories SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_deleted = ? AND quantity >= ?`,
		qty, id, false, qty,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventorydomain.ErrInsufficientStock
	}
	return nil
}
