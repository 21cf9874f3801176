package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/shopstack/shopstack/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orgdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	return db.WithContext(ctx).Create(org).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orgdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repo) ListByShopkeeper(ctx context.Context, db *gorm.DB, shopkeeperID snowflake.ID) ([]orgdomain.Organization, error) {
	var orgs []orgdomain.Organization
	err := db.WithContext(ctx).
		Where("shopkeeper_id = ? AND is_deleted = ?", shopkeeperID, false).
		Order("created_at ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE organizations SET
			org_name = ?, org_phone = ?, org_email = ?, org_gst = ?,
			address = ?, state = ?, country = ?, pincode = ?,
			is_estimated = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = ?`,
		org.OrgName,
		org.OrgPhone,
		org.OrgEmail,
		org.OrgGST,
		org.Address,
		org.State,
		org.Country,
		org.Pincode,
		org.IsEstimated,
		org.UpdatedAt,
		org.ID,
		false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orgdomain.ErrNotFound
	}
	return nil
}

func (r *repo) FindActiveByShopkeeper(ctx context.Context, db *gorm.DB, shopkeeperID snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := db.WithContext(ctx).
		Where("shopkeeper_id = ? AND is_active = ? AND is_deleted = ?", shopkeeperID, true, false).
		Take(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orgdomain.ErrActiveOrgMissing
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE organizations SET is_deleted = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_active = ? AND is_deleted = ?`,
		true, id, false, false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orgdomain.ErrDeleteActiveOrg
	}
	return nil
}
