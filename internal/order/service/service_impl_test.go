package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	clockpkg "github.com/shopstack/shopstack/internal/clock"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	"github.com/shopstack/shopstack/internal/order/guard"
	orderrepository "github.com/shopstack/shopstack/internal/order/repository"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	planrepository "github.com/shopstack/shopstack/internal/plan/repository"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	trackerrepository "github.com/shopstack/shopstack/internal/plantracker/repository"
	trackerservice "github.com/shopstack/shopstack/internal/plantracker/service"
	"github.com/shopstack/shopstack/internal/sequence"
	"github.com/shopstack/shopstack/internal/shopkeeper"
	shopkeeperdomain "github.com/shopstack/shopstack/internal/shopkeeper/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderFixture struct {
	svc          orderdomain.Service
	db           *gorm.DB
	node         *snowflake.Node
	clk          *clockpkg.FakeClock
	shopkeeperID snowflake.ID
	supplierID   snowflake.ID
	orgID        snowflake.ID
}

func setupOrderService(t *testing.T, maxOrdersPerMonth int) orderFixture {
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
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clockpkg.NewFakeClock(time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC))
	now := clk.Now()

	plan := &plandomain.Plan{
		ID:                node.Generate(),
		PlanName:          "Basic",
		MaxOrdersPerMonth: maxOrdersPerMonth,
		MaxAPICalls:       1000,
		Status:            plandomain.PlanStatusActive,
		BillingCycle:      plandomain.BillingCycleMonthly,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, db.Create(plan).Error)

	keeper := &shopkeeperdomain.Shopkeeper{
		ID:            node.Generate(),
		FullName:      "Meena Mobiles",
		Phone:         "9000000005",
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

	trackerSvc := trackerservice.NewService(trackerservice.ServiceParam{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          clk,
		Repo:           trackerrepository.Provide(),
		ShopkeeperRepo: shopkeeper.Provide(),
		PlanRepo:       planrepository.Provide(),
	})

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       orderrepository.Provide(),
		TrackerSvc: trackerSvc,
		Allocator:  sequence.NewAllocator(),
	})

	return orderFixture{
		svc:          svc,
		db:           db,
		node:         node,
		clk:          clk,
		shopkeeperID: keeper.ID,
		supplierID:   node.Generate(),
		orgID:        orgID,
	}
}

func (f orderFixture) request(items ...orderdomain.OrderLine) orderdomain.MakeOrderRequest {
	return orderdomain.MakeOrderRequest{
		ShopkeeperID: f.shopkeeperID,
		SupplierID:   f.supplierID,
		OrgID:        f.orgID,
		TotalAmt:     4500,
		Items:        items,
	}
}

func (f orderFixture) line(qty int64) orderdomain.OrderLine {
	return orderdomain.OrderLine{
		SupplierProductID: f.node.Generate(),
		Quantity:          qty,
		ProductPrice:      1500,
	}
}

func TestMakeAssignsSupplierScopedNumbers(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	first, items, err := f.svc.Make(ctx, f.request(f.line(2), f.line(1)))
	require.NoError(t, err)
	assert.Equal(t, "INV001", first.OrderNo)
	assert.Equal(t, orderdomain.ApprovalStatusPending, first.ApprovalStatus)
	require.Len(t, items, 2)

	second, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)
	assert.Equal(t, "INV002", second.OrderNo)

	// A different supplier starts its own number line.
	otherSupplier := f.request(f.line(1))
	otherSupplier.SupplierID = f.node.Generate()
	third, _, err := f.svc.Make(ctx, otherSupplier)
	require.NoError(t, err)
	assert.Equal(t, "INV001", third.OrderNo)

	var tracker trackerdomain.PlanTracker
	require.NoError(t, f.db.Where("org_id = ?", f.orgID).Take(&tracker).Error)
	assert.Equal(t, 3, tracker.CountOrdersPerMonth)
	assert.Equal(t, 3, tracker.CountAPICalls)
}

func TestMakeStopsAtMonthlyCeiling(t *testing.T) {
	f := setupOrderService(t, 2)
	ctx := context.Background()

	_, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)
	_, _, err = f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	_, _, err = f.svc.Make(ctx, f.request(f.line(1)))
	assert.ErrorIs(t, err, trackerdomain.ErrQuotaExceeded)

	var count int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestDecideApprovesPendingOrderOnce(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	placed, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	approved, err := f.svc.Decide(ctx, placed.ID, orderdomain.ApprovalStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.ApprovalStatusApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ApprovedDate)

	_, err = f.svc.Decide(ctx, placed.ID, orderdomain.ApprovalStatusRejected)
	assert.ErrorIs(t, err, guard.ErrOrderNotPending)
}

func TestDecideRejectsNonDecisionStatus(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	placed, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, placed.ID, orderdomain.ApprovalStatusExpired)
	assert.ErrorIs(t, err, guard.ErrInvalidDecision)
}

func TestMarkDeliveredRequiresApproval(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	placed, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	_, err = f.svc.MarkDelivered(ctx, placed.ID, orderdomain.DeliverySideSupplier)
	assert.ErrorIs(t, err, guard.ErrOrderNotApproved)

	_, err = f.svc.Decide(ctx, placed.ID, orderdomain.ApprovalStatusApproved)
	require.NoError(t, err)

	delivered, err := f.svc.MarkDelivered(ctx, placed.ID, orderdomain.DeliverySideSupplier)
	require.NoError(t, err)
	assert.True(t, delivered.SupplierDeliveryStatus)
	assert.False(t, delivered.ShopkeeperDeliveryStatus)
	require.NotNil(t, delivered.DeliveredDate)

	received, err := f.svc.MarkDelivered(ctx, placed.ID, orderdomain.DeliverySideShopkeeper)
	require.NoError(t, err)
	assert.True(t, received.ShopkeeperDeliveryStatus)
	require.NotNil(t, received.ReceivedDate)

	// Confirming again is a no-op, not an error.
	again, err := f.svc.MarkDelivered(ctx, placed.ID, orderdomain.DeliverySideSupplier)
	require.NoError(t, err)
	assert.True(t, again.SupplierDeliveryStatus)
}

func TestExpireStaleIsIdempotent(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	stale, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	f.clk.Advance(25 * time.Hour)
	fresh, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	expired, err := f.svc.ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	row, _, err := f.svc.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.ApprovalStatusExpired, row.ApprovalStatus)
	require.NotNil(t, row.ApprovedDate)

	row, _, err = f.svc.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.ApprovalStatusPending, row.ApprovalStatus)

	// Second sweep finds nothing left to do.
	expired, err = f.svc.ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestExpiredOrderCannotBeDecided(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	placed, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	f.clk.Advance(25 * time.Hour)
	_, err = f.svc.ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, placed.ID, orderdomain.ApprovalStatusApproved)
	assert.ErrorIs(t, err, guard.ErrOrderNotPending)
}

func TestListBySupplierFilters(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	first, _, err := f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)
	_, _, err = f.svc.Make(ctx, f.request(f.line(1)))
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, first.ID, orderdomain.ApprovalStatusApproved)
	require.NoError(t, err)

	approvedOnly, err := f.svc.ListBySupplier(ctx, f.supplierID, orderdomain.ListFilter{
		ApprovalStatus: orderdomain.ApprovalStatusApproved,
	})
	require.NoError(t, err)
	require.Len(t, approvedOnly, 1)
	assert.Equal(t, first.ID, approvedOnly[0].ID)

	notPending, err := f.svc.ListBySupplier(ctx, f.supplierID, orderdomain.ListFilter{NotPending: true})
	require.NoError(t, err)
	require.Len(t, notPending, 1)

	march, err := f.svc.ListBySupplier(ctx, f.supplierID, orderdomain.ListFilter{
		Year:  2024,
		Month: time.March,
	})
	require.NoError(t, err)
	assert.Len(t, march, 2)

	april, err := f.svc.ListBySupplier(ctx, f.supplierID, orderdomain.ListFilter{
		Year:  2024,
		Month: time.April,
	})
	require.NoError(t, err)
	assert.Empty(t, april)
}

func TestUpdateBillTotalsRevisesOrderAndItems(t *testing.T) {
	f := setupOrderService(t, 100)
	ctx := context.Background()

	placed, items, err := f.svc.Make(ctx, f.request(f.line(2)))
	require.NoError(t, err)

	err = f.svc.UpdateBillTotals(ctx, placed.ID, orderdomain.BillTotalsRequest{
		CGST:     81,
		SGST:     81,
		Discount: 100,
		FinalAmt: 3062,
		Items: []orderdomain.ItemRevision{
			{ID: items[0].ID, Quantity: 3, ProductPrice: 1000},
		},
	})
	require.NoError(t, err)

	row, revised, err := f.svc.GetByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(3062), row.FinalAmt)
	require.NotNil(t, row.InvoiceDate)
	require.Len(t, revised, 1)
	assert.Equal(t, int64(3), revised[0].Quantity)
	assert.Equal(t, float64(1000), revised[0].ProductPrice)
}
