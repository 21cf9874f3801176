package shopkeeper

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	shopkeeperdomain "github.com/shopstack/shopstack/internal/shopkeeper/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() shopkeeperdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, shopkeeper *shopkeeperdomain.Shopkeeper) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO shopkeepers (
			id, full_name, phone, user_type, current_plan_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shopkeeper.ID,
		shopkeeper.FullName,
		shopkeeper.Phone,
		shopkeeper.UserType,
		shopkeeper.CurrentPlanID,
		shopkeeper.CreatedAt,
		shopkeeper.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*shopkeeperdomain.Shopkeeper, error) {
	var shopkeeper shopkeeperdomain.Shopkeeper
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&shopkeeper).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shopkeeperdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shopkeeper, nil
}

func (r *repo) UpdateCurrentPlan(ctx context.Context, db *gorm.DB, id, planID snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE shopkeepers SET current_plan_id = ?, updated_at = ? WHERE id = ?`,
		planID,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shopkeeperdomain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateTrialWindow(ctx context.Context, db *gorm.DB, id snowflake.ID, start, expiry time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE shopkeepers SET trial_start_at = ?, trial_expiry_at = ?, updated_at = ? WHERE id = ?`,
		start,
		expiry,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shopkeeperdomain.ErrNotFound
	}
	return nil
}
