// Package domain contains the subscription plan catalog consumed by quota
// enforcement.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PlanStatus marks whether a plan can be assigned to shopkeepers.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "Active"
	PlanStatusInactive PlanStatus = "Inactive"
)

// BillingCycle is the subscription renewal period.
type BillingCycle string

const (
	BillingCycleMonthly    BillingCycle = "Monthly"
	BillingCycleQuarterly  BillingCycle = "Quarterly"
	BillingCycleHalfYearly BillingCycle = "Half-Yearly"
	BillingCycleYearly     BillingCycle = "Yearly"
)

// Plan is a subscription tier. Each Max field is the ceiling for the usage
// dimension of the same name; rows are immutable per version and read-only
// to the quota path.
type Plan struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	PlanName             string       `gorm:"type:text;not null;uniqueIndex" json:"plan_name"`
	TrialPeriodDays      int          `gorm:"not null;default:0" json:"trial_period_days"`
	MaxOrganizations     int          `gorm:"not null;default:1" json:"max_organizations"`
	MaxSubUsers          int          `gorm:"not null;default:1" json:"max_sub_users"`
	MaxReportsDownload   int          `gorm:"not null;default:10" json:"max_reports_download"`
	MaxReportViewsPerDay int          `gorm:"not null;default:2" json:"max_report_views_per_day"`
	MaxProducts          int          `gorm:"not null;default:20" json:"max_products"`
	MaxBillsCreation     int          `gorm:"not null;default:20" json:"max_bills_creation"`
	MaxOrdersPerMonth    int          `gorm:"not null;default:10" json:"max_orders_per_month"`
	MaxBarcodeScans      int          `gorm:"not null;default:30" json:"max_barcode_scans"`
	MaxAPICalls          int          `gorm:"column:max_api_calls;not null;default:200" json:"max_api_calls"`
	SupportLevel         string       `gorm:"type:text;not null;default:'None'" json:"support_level"`
	Status               PlanStatus   `gorm:"type:text;not null;default:'Active'" json:"status"`
	Price                float64      `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	BillingCycle         BillingCycle `gorm:"type:text;not null;default:'Monthly'" json:"billing_cycle"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

// CeilingFor returns the plan ceiling for a usage dimension.
func (p Plan) CeilingFor(dim Dimension) (int, error) {
	switch dim {
	case DimOrganizations:
		return p.MaxOrganizations, nil
	case DimSubUsers:
		return p.MaxSubUsers, nil
	case DimReportsDownload:
		return p.MaxReportsDownload, nil
	case DimReportViewsPerDay:
		return p.MaxReportViewsPerDay, nil
	case DimProducts:
		return p.MaxProducts, nil
	case DimBillsCreation:
		return p.MaxBillsCreation, nil
	case DimOrdersPerMonth:
		return p.MaxOrdersPerMonth, nil
	case DimBarcodeScans:
		return p.MaxBarcodeScans, nil
	case DimAPICalls:
		return p.MaxAPICalls, nil
	default:
		return 0, ErrUnknownDimension
	}
}
