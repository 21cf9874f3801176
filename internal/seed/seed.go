// Package seed bootstraps reference data a fresh deployment needs: the plan
// catalog and, for non-postgres dev databases, the schema itself.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	"github.com/shopstack/shopstack/internal/config"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	organizationdomain "github.com/shopstack/shopstack/internal/organization/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	shopkeeperdomain "github.com/shopstack/shopstack/internal/shopkeeper/domain"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"gorm.io/gorm"
)

// AutoMigrate creates the schema from the model definitions. The postgres
// path uses versioned SQL migrations instead; this covers sqlite and mysql
// development databases.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	return db.AutoMigrate(
		&plandomain.Plan{},
		&shopkeeperdomain.Shopkeeper{},
		&organizationdomain.Organization{},
		&trackerdomain.PlanTracker{},
		&subuserdomain.SubUser{},
		&inventorydomain.Product{},
		&billdomain.CustomerBill{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
	)
}

// EnsurePlanCatalog upserts the configured plan tiers by name. Existing
// rows have their ceilings refreshed so a catalog edit lands on restart;
// plans removed from the catalog are left alone because shopkeepers may
// still reference them.
func EnsurePlanCatalog(db *gorm.DB, catalog config.PlanCatalog) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, spec := range catalog.Plans {
			if err := ensurePlanTx(ctx, tx, node, spec); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensurePlanTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, spec config.PlanSpec) error {
	var existing plandomain.Plan
	err := tx.WithContext(ctx).
		Where("plan_name = ?", spec.Name).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		plan := planFromSpec(spec)
		plan.ID = node.Generate()
		return tx.WithContext(ctx).Create(&plan).Error
	}

	updated := planFromSpec(spec)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	return tx.WithContext(ctx).Model(&plandomain.Plan{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"trial_period_days":        updated.TrialPeriodDays,
			"max_organizations":        updated.MaxOrganizations,
			"max_sub_users":            updated.MaxSubUsers,
			"max_reports_download":     updated.MaxReportsDownload,
			"max_report_views_per_day": updated.MaxReportViewsPerDay,
			"max_products":             updated.MaxProducts,
			"max_bills_creation":       updated.MaxBillsCreation,
			"max_orders_per_month":     updated.MaxOrdersPerMonth,
			"max_barcode_scans":        updated.MaxBarcodeScans,
			"max_api_calls":            updated.MaxAPICalls,
			"price":                    updated.Price,
			"billing_cycle":            updated.BillingCycle,
		}).Error
}

func planFromSpec(spec config.PlanSpec) plandomain.Plan {
	cycle := plandomain.BillingCycle(spec.BillingCycle)
	if cycle == "" {
		cycle = plandomain.BillingCycleMonthly
	}
	return plandomain.Plan{
		PlanName:             spec.Name,
		TrialPeriodDays:      spec.TrialPeriodDays,
		MaxOrganizations:     spec.MaxOrganizations,
		MaxSubUsers:          spec.MaxSubUsers,
		MaxReportsDownload:   spec.MaxReportsDownload,
		MaxReportViewsPerDay: spec.MaxReportViewsPerDay,
		MaxProducts:          spec.MaxProducts,
		MaxBillsCreation:     spec.MaxBillsCreation,
		MaxOrdersPerMonth:    spec.MaxOrdersPerMonth,
		MaxBarcodeScans:      spec.MaxBarcodeScans,
		MaxAPICalls:          spec.MaxAPICalls,
		Price:                spec.Price,
		BillingCycle:         cycle,
		Status:               plandomain.PlanStatusActive,
	}
}
