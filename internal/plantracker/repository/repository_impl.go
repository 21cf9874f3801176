package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() trackerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tracker *trackerdomain.PlanTracker) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans_tracker (
			id, shopkeeper_id, org_id,
			count_organizations, count_sub_users, count_reports_download,
			count_report_views_per_day, count_products, count_bills_creation,
			count_orders_per_month, count_barcode_scans, count_api_calls,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tracker.ID,
		tracker.ShopkeeperID,
		tracker.OrgID,
		tracker.CountOrganizations,
		tracker.CountSubUsers,
		tracker.CountReportsDownload,
		tracker.CountReportViewsPerDay,
		tracker.CountProducts,
		tracker.CountBillsCreation,
		tracker.CountOrdersPerMonth,
		tracker.CountBarcodeScans,
		tracker.CountAPICalls,
		tracker.CreatedAt,
		tracker.UpdatedAt,
	).Error
}

func (r *repo) FindByOrgID(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*trackerdomain.PlanTracker, error) {
	var tracker trackerdomain.PlanTracker
	err := db.WithContext(ctx).Raw(
		`SELECT id, shopkeeper_id, org_id,
		        count_organizations, count_sub_users, count_reports_download,
		        count_report_views_per_day, count_products, count_bills_creation,
		        count_orders_per_month, count_barcode_scans, count_api_calls,
		        created_at, updated_at
		 FROM plans_tracker
		 WHERE org_id = ?
		 FOR UPDATE`,
		orgID,
	).Scan(&tracker).Error
	if err != nil {
		return nil, err
	}
	if tracker.ID == 0 {
		return nil, trackerdomain.ErrTrackerNotFound
	}
	return &tracker, nil
}

func (r *repo) SumForShopkeeper(ctx context.Context, db *gorm.DB, shopkeeperID snowflake.ID, dim plandomain.Dimension) (int, error) {
	column, err := trackerdomain.CounterColumn(dim)
	if err != nil {
		return 0, err
	}
	var total int
	err = db.WithContext(ctx).
		Raw(fmt.Sprintf(
			`SELECT COALESCE(SUM(%s), 0) FROM plans_tracker WHERE shopkeeper_id = ?`,
			column,
		), shopkeeperID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Increment(ctx context.Context, db *gorm.DB, trackerID snowflake.ID, dims []plandomain.Dimension, by int) error {
	if len(dims) == 0 || by <= 0 {
		return nil
	}
	sets := make([]string, 0, len(dims))
	for _, dim := range dims {
		column, err := trackerdomain.CounterColumn(dim)
		if err != nil {
			return err
		}
		sets = append(sets, fmt.Sprintf("%s = %s + ?", column, column))
	}
	args := make([]interface{}, 0, len(dims)+1)
	for range dims {
		args = append(args, by)
	}
	args = append(args, trackerID)

	res := db.WithContext(ctx).Exec(fmt.Sprintf(
		`UPDATE plans_tracker SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.Join(sets, ", "),
	), args...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return trackerdomain.ErrTrackerNotFound
	}
	return nil
}

func (r *repo) Decrement(ctx context.Context, db *gorm.DB, trackerID snowflake.ID, dim plandomain.Dimension, by int) error {
	if by <= 0 {
		return nil
	}
	column, err := trackerdomain.CounterColumn(dim)
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).Exec(fmt.Sprintf(
		`UPDATE plans_tracker
		 SET %s = CASE WHEN %s > ? THEN %s - ? ELSE 0 END, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		column, column, column,
	), by, by, trackerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return trackerdomain.ErrTrackerNotFound
	}
	return nil
}

func (r *repo) BulkReset(ctx context.Context, db *gorm.DB, dim plandomain.Dimension) (int64, error) {
	column, err := trackerdomain.CounterColumn(dim)
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Exec(fmt.Sprintf(
		`UPDATE plans_tracker SET %s = 0, updated_at = CURRENT_TIMESTAMP WHERE %s <> 0`,
		column, column,
	))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
