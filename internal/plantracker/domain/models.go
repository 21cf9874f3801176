// Package domain contains the per-organization usage counters and the
// quota-enforcement contract built on them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
)

// PlanTracker is one counter row per (shopkeeper, organization) pair. Every
// counter is checked against the owning shopkeeper's current plan ceiling at
// the moment of increment; daily and monthly counters are zeroed by the
// sweeper.
type PlanTracker struct {
	ID                     snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopkeeperID           snowflake.ID `gorm:"not null;uniqueIndex:idx_plans_tracker_owner,priority:1" json:"shopkeeper_id"`
	OrgID                  snowflake.ID `gorm:"not null;uniqueIndex:idx_plans_tracker_owner,priority:2;index" json:"org_id"`
	CountOrganizations     int          `gorm:"not null;default:0" json:"count_organizations"`
	CountSubUsers          int          `gorm:"not null;default:0" json:"count_sub_users"`
	CountReportsDownload   int          `gorm:"not null;default:0" json:"count_reports_download"`
	CountReportViewsPerDay int          `gorm:"not null;default:0" json:"count_report_views_per_day"`
	CountProducts          int          `gorm:"not null;default:0" json:"count_products"`
	CountBillsCreation     int          `gorm:"not null;default:0" json:"count_bills_creation"`
	CountOrdersPerMonth    int          `gorm:"not null;default:0" json:"count_orders_per_month"`
	CountBarcodeScans      int          `gorm:"not null;default:0" json:"count_barcode_scans"`
	CountAPICalls          int          `gorm:"column:count_api_calls;not null;default:0" json:"count_api_calls"`
	CreatedAt              time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PlanTracker) TableName() string { return "plans_tracker" }

// CountFor returns the current counter value for a dimension.
func (t PlanTracker) CountFor(dim plandomain.Dimension) (int, error) {
	switch dim {
	case plandomain.DimOrganizations:
		return t.CountOrganizations, nil
	case plandomain.DimSubUsers:
		return t.CountSubUsers, nil
	case plandomain.DimReportsDownload:
		return t.CountReportsDownload, nil
	case plandomain.DimReportViewsPerDay:
		return t.CountReportViewsPerDay, nil
	case plandomain.DimProducts:
		return t.CountProducts, nil
	case plandomain.DimBillsCreation:
		return t.CountBillsCreation, nil
	case plandomain.DimOrdersPerMonth:
		return t.CountOrdersPerMonth, nil
	case plandomain.DimBarcodeScans:
		return t.CountBarcodeScans, nil
	case plandomain.DimAPICalls:
		return t.CountAPICalls, nil
	default:
		return 0, plandomain.ErrUnknownDimension
	}
}

// CounterColumn maps a dimension to its tracker column. The mapping is the
// only place counter names appear as SQL identifiers.
func CounterColumn(dim plandomain.Dimension) (string, error) {
	switch dim {
	case plandomain.DimOrganizations:
		return "count_organizations", nil
	case plandomain.DimSubUsers:
		return "count_sub_users", nil
	case plandomain.DimReportsDownload:
		return "count_reports_download", nil
	case plandomain.DimReportViewsPerDay:
		return "count_report_views_per_day", nil
	case plandomain.DimProducts:
		return "count_products", nil
	case plandomain.DimBillsCreation:
		return "count_bills_creation", nil
	case plandomain.DimOrdersPerMonth:
		return "count_orders_per_month", nil
	case plandomain.DimBarcodeScans:
		return "count_barcode_scans", nil
	case plandomain.DimAPICalls:
		return "count_api_calls", nil
	default:
		return "", plandomain.ErrUnknownDimension
	}
}
