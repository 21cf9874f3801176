package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() plandomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *plandomain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (
			id, plan_name, trial_period_days, max_organizations, max_sub_users,
			max_reports_download, max_report_views_per_day, max_products,
			max_bills_creation, max_orders_per_month, max_barcode_scans,
			max_api_calls, support_level, status, price, billing_cycle,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.PlanName,
		plan.TrialPeriodDays,
		plan.MaxOrganizations,
		plan.MaxSubUsers,
		plan.MaxReportsDownload,
		plan.MaxReportViewsPerDay,
		plan.MaxProducts,
		plan.MaxBillsCreation,
		plan.MaxOrdersPerMonth,
		plan.MaxBarcodeScans,
		plan.MaxAPICalls,
		plan.SupportLevel,
		plan.Status,
		plan.Price,
		plan.BillingCycle,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*plandomain.Plan, error) {
	var plan plandomain.Plan
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, plandomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*plandomain.Plan, error) {
	var plan plandomain.Plan
	err := db.WithContext(ctx).
		Where("plan_name = ?", name).
		Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, plandomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status plandomain.PlanStatus) ([]plandomain.Plan, error) {
	var plans []plandomain.Plan
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("price ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}
