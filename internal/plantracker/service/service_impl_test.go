package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	clockpkg "github.com/shopstack/shopstack/internal/clock"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	planrepository "github.com/shopstack/shopstack/internal/plan/repository"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	trackerrepository "github.com/shopstack/shopstack/internal/plantracker/repository"
	"github.com/shopstack/shopstack/internal/shopkeeper"
	shopkeeperdomain "github.com/shopstack/shopstack/internal/shopkeeper/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", stripForUpdate)
	db.Callback().Row().Before("gorm:row").Register("sqlite_strip_for_update_row", stripForUpdate)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&shopkeeperdomain.Shopkeeper{},
		&trackerdomain.PlanTracker{},
	))
	return db
}

type trackerFixture struct {
	svc          trackerdomain.Service
	db           *gorm.DB
	node         *snowflake.Node
	planID       snowflake.ID
	shopkeeperID snowflake.ID
	orgID        snowflake.ID
}

func setupTrackerService(t *testing.T, mutatePlan func(*plandomain.Plan)) trackerFixture {
	t.Helper()
	db := openTestDB(t)
	node := mustNode(t)
	now := time.Now().UTC()

	plan := &plandomain.Plan{
		ID:                   node.Generate(),
		PlanName:             "Free",
		MaxOrganizations:     2,
		MaxSubUsers:          1,
		MaxReportsDownload:   5,
		MaxReportViewsPerDay: 10,
		MaxProducts:          3,
		MaxBillsCreation:     3,
		MaxOrdersPerMonth:    3,
		MaxBarcodeScans:      5,
		MaxAPICalls:          100,
		Status:               plandomain.PlanStatusActive,
		BillingCycle:         plandomain.BillingCycleMonthly,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if mutatePlan != nil {
		mutatePlan(plan)
	}
	require.NoError(t, db.Create(plan).Error)

	keeper := &shopkeeperdomain.Shopkeeper{
		ID:            node.Generate(),
		FullName:      "Asha Stores",
		Phone:         "9000000001",
		UserType:      shopkeeperdomain.UserTypeShopkeeper,
		CurrentPlanID: plan.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(keeper).Error)

	orgID := node.Generate()
	require.NoError(t, db.Create(&trackerdomain.PlanTracker{
		ID:           node.Generate(),
		ShopkeeperID: keeper.ID,
		OrgID:        orgID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)

	svc := NewService(ServiceParam{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          clockpkg.NewSystemClock(),
		Repo:           trackerrepository.Provide(),
		ShopkeeperRepo: shopkeeper.Provide(),
		PlanRepo:       planrepository.Provide(),
	})

	return trackerFixture{
		svc:          svc,
		db:           db,
		node:         node,
		planID:       plan.ID,
		shopkeeperID: keeper.ID,
		orgID:        orgID,
	}
}

func loadTracker(t *testing.T, db *gorm.DB, orgID snowflake.ID) trackerdomain.PlanTracker {
	t.Helper()
	var tracker trackerdomain.PlanTracker
	require.NoError(t, db.Where("org_id = ?", orgID).Take(&tracker).Error)
	return tracker
}

func TestWithQuotaIncrementsUntilCeiling(t *testing.T) {
	f := setupTrackerService(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := f.svc.WithQuota(ctx, f.orgID, plandomain.DimProducts, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
			return nil
		})
		require.NoError(t, err, "attempt %d should fit under ceiling", i+1)
	}

	err := f.svc.WithQuota(ctx, f.orgID, plandomain.DimProducts, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		t.Fatal("protected write must not run once the ceiling is reached")
		return nil
	})
	assert.ErrorIs(t, err, trackerdomain.ErrQuotaExceeded)

	tracker := loadTracker(t, f.db, f.orgID)
	assert.Equal(t, 3, tracker.CountProducts)
	assert.Equal(t, 3, tracker.CountAPICalls)
}

func TestWithQuotaRollsBackOnWriteFailure(t *testing.T) {
	f := setupTrackerService(t, nil)
	boom := errors.New("write failed")

	err := f.svc.WithQuota(context.Background(), f.orgID, plandomain.DimProducts, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	tracker := loadTracker(t, f.db, f.orgID)
	assert.Equal(t, 0, tracker.CountProducts)
	assert.Equal(t, 0, tracker.CountAPICalls)
}

func TestWithQuotaConsumesMultipleUnits(t *testing.T) {
	f := setupTrackerService(t, func(p *plandomain.Plan) {
		p.MaxBillsCreation = 10
	})

	err := f.svc.WithQuota(context.Background(), f.orgID, plandomain.DimBillsCreation, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		grant.Consume(3)
		return nil
	})
	require.NoError(t, err)

	tracker := loadTracker(t, f.db, f.orgID)
	assert.Equal(t, 3, tracker.CountBillsCreation)
	assert.Equal(t, 3, tracker.CountAPICalls)
}

func TestWithQuotaUnknownOrganization(t *testing.T) {
	f := setupTrackerService(t, nil)

	err := f.svc.WithQuota(context.Background(), f.node.Generate(), plandomain.DimProducts, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		return nil
	})
	assert.ErrorIs(t, err, trackerdomain.ErrTrackerNotFound)
}

func TestWithQuotaShopkeeperWithoutPlan(t *testing.T) {
	f := setupTrackerService(t, nil)
	require.NoError(t, f.db.Exec(
		`UPDATE shopkeepers SET current_plan_id = 0 WHERE id = ?`, f.shopkeeperID,
	).Error)

	err := f.svc.WithQuota(context.Background(), f.orgID, plandomain.DimProducts, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		return nil
	})
	assert.ErrorIs(t, err, trackerdomain.ErrPlanNotFound)
}

func TestWithQuotaForShopkeeperAggregatesAcrossOrgs(t *testing.T) {
	f := setupTrackerService(t, nil)
	ctx := context.Background()

	// First organization already exists from the fixture; its creation was
	// never charged, so charge it now through the aggregate-scoped guard.
	err := f.svc.WithQuotaForShopkeeper(ctx, f.shopkeeperID, plandomain.DimOrganizations, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		grant.SetTargetOrg(f.orgID)
		return nil
	})
	require.NoError(t, err)

	// Second organization: provisioned inside the protected write, counted
	// on its own fresh row.
	secondOrg := f.node.Generate()
	err = f.svc.WithQuotaForShopkeeper(ctx, f.shopkeeperID, plandomain.DimOrganizations, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		if err := f.svc.Provision(ctx, tx, f.shopkeeperID, secondOrg); err != nil {
			return err
		}
		grant.SetTargetOrg(secondOrg)
		return nil
	})
	require.NoError(t, err)

	// Plan allows two organizations; the sum across rows is now 2.
	err = f.svc.WithQuotaForShopkeeper(ctx, f.shopkeeperID, plandomain.DimOrganizations, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		t.Fatal("protected write must not run once the aggregate ceiling is reached")
		return nil
	})
	assert.ErrorIs(t, err, trackerdomain.ErrQuotaExceeded)

	first := loadTracker(t, f.db, f.orgID)
	second := loadTracker(t, f.db, secondOrg)
	assert.Equal(t, 1, first.CountOrganizations)
	assert.Equal(t, 1, second.CountOrganizations)
}

func TestCheckQuotaReadsWithoutIncrementing(t *testing.T) {
	f := setupTrackerService(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.CheckQuota(ctx, f.orgID, plandomain.DimProducts))

	tracker := loadTracker(t, f.db, f.orgID)
	assert.Equal(t, 0, tracker.CountProducts)
	assert.Equal(t, 0, tracker.CountAPICalls)

	require.NoError(t, f.db.Exec(
		`UPDATE plans_tracker SET count_products = 3 WHERE org_id = ?`, f.orgID,
	).Error)
	assert.ErrorIs(t, f.svc.CheckQuota(ctx, f.orgID, plandomain.DimProducts), trackerdomain.ErrQuotaExceeded)
}

func TestResetCounterZeroesEveryRow(t *testing.T) {
	f := setupTrackerService(t, nil)
	ctx := context.Background()

	secondOrg := f.node.Generate()
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.Provision(ctx, tx, f.shopkeeperID, secondOrg)
	}))
	require.NoError(t, f.db.Exec(
		`UPDATE plans_tracker SET count_orders_per_month = 2, count_products = 1`,
	).Error)

	rows, err := f.svc.ResetCounter(ctx, plandomain.DimOrdersPerMonth)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	for _, orgID := range []snowflake.ID{f.orgID, secondOrg} {
		tracker := loadTracker(t, f.db, orgID)
		assert.Equal(t, 0, tracker.CountOrdersPerMonth)
		assert.Equal(t, 1, tracker.CountProducts, "other counters must be untouched")
	}
}
