package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subuserdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subUser *subuserdomain.SubUser) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sub_users (
			id, shopkeeper_id, org_id, full_name, gender, date_of_birth,
			address, state, country, pincode, phone, password_hash, role,
			is_deleted, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		subUser.ID,
		subUser.ShopkeeperID,
		subUser.OrgID,
		subUser.FullName,
		subUser.Gender,
		subUser.DateOfBirth,
		subUser.Address,
		subUser.State,
		subUser.Country,
		subUser.Pincode,
		subUser.Phone,
		subUser.PasswordHash,
		subUser.Role,
		subUser.IsDeleted,
		subUser.CreatedAt,
		subUser.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subuserdomain.SubUser, error) {
	var subUser subuserdomain.SubUser
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&subUser).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, subuserdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subUser, nil
}

func (r *repo) ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]subuserdomain.SubUser, error) {
	var subUsers []subuserdomain.SubUser
	err := db.WithContext(ctx).
		Where("org_id = ? AND is_deleted = ?", orgID, false).
		Order("created_at ASC").
		Find(&subUsers).Error
	if err != nil {
		return nil, err
	}
	return subUsers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, subUser *subuserdomain.SubUser) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE sub_users SET
			full_name = ?, gender = ?, address = ?, state = ?, country = ?,
			pincode = ?, phone = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = ?`,
		subUser.FullName,
		subUser.Gender,
		subUser.Address,
		subUser.State,
		subUser.Country,
		subUser.Pincode,
		subUser.Phone,
		subUser.UpdatedAt,
		subUser.ID,
		false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return subuserdomain.ErrNotFound
	}
	return nil
}

func (r *repo) ManagerExists(ctx context.Context, db *gorm.DB, shopkeeperID, orgID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM sub_users
		 WHERE shopkeeper_id = ? AND org_id = ? AND role = ? AND is_deleted = ?`,
		shopkeeperID, orgID, subuserdomain.RoleManager, false,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE sub_users SET is_deleted = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_deleted = ?`,
		true, id, false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return subuserdomain.ErrNotFound
	}
	return nil
}

func (r *repo) SoftDeleteByOrg(ctx context.Context, db *gorm.DB, shopkeeperID, orgID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE sub_users SET is_deleted = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE shopkeeper_id = ? AND org_id = ? AND is_deleted = ?`,
		true, shopkeeperID, orgID, false,
	)
	return result.RowsAffected, result.Error
}
