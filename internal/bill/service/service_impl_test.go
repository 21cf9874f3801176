package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	billrepository "github.com/shopstack/shopstack/internal/bill/repository"
	clockpkg "github.com/shopstack/shopstack/internal/clock"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	inventoryrepository "github.com/shopstack/shopstack/internal/inventory/repository"
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

type billFixture struct {
	svc          billdomain.Service
	db           *gorm.DB
	node         *snowflake.Node
	shopkeeperID snowflake.ID
	orgID        snowflake.ID
}

func setupBillService(t *testing.T, maxBills int) billFixture {
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
		&inventorydomain.Product{},
		&billdomain.CustomerBill{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	plan := &plandomain.Plan{
		ID:               node.Generate(),
		PlanName:         "Basic",
		MaxBillsCreation: maxBills,
		MaxAPICalls:      1000,
		Status:           plandomain.PlanStatusActive,
		BillingCycle:     plandomain.BillingCycleMonthly,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Create(plan).Error)

	keeper := &shopkeeperdomain.Shopkeeper{
		ID:            node.Generate(),
		FullName:      "Meena Mobiles",
		Phone:         "9000000004",
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

	clk := clockpkg.NewSystemClock()
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
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clk,
		Repo:          billrepository.Provide(),
		InventoryRepo: inventoryrepository.Provide(),
		TrackerSvc:    trackerSvc,
		Allocator:     sequence.NewAllocator(),
	})

	return billFixture{svc: svc, db: db, node: node, shopkeeperID: keeper.ID, orgID: orgID}
}

func (f billFixture) seedProduct(t *testing.T, qty int64) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	id := f.node.Generate()
	require.NoError(t, f.db.Create(&inventorydomain.Product{
		ID:           id,
		ShopkeeperID: f.shopkeeperID,
		OrgID:        f.orgID,
		ProductModel: "SM-A15",
		ProductName:  "Galaxy A15",
		ProductPrice: 13999,
		Quantity:     qty,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)
	return id
}

func (f billFixture) request(billType billdomain.BillType, items ...billdomain.LineItem) billdomain.CreateBillRequest {
	return billdomain.CreateBillRequest{
		ShopkeeperID: f.shopkeeperID,
		OrgID:        f.orgID,
		BillType:     billType,
		CustomerName: "Walk-in",
		InvoiceDate:  time.Now().UTC(),
		ProductTotal: 13999,
		FinalTotal:   13999,
		Items:        items,
	}
}

func lineItem(productID snowflake.ID, qty int64) billdomain.LineItem {
	return billdomain.LineItem{
		InventoryID:  productID,
		ProductName:  "Galaxy A15",
		ProductModel: "SM-A15",
		Quantity:     qty,
		ProductPrice: 13999,
	}
}

func TestCreateAssignsSequentialInvoiceNumbers(t *testing.T) {
	f := setupBillService(t, 100)
	ctx := context.Background()
	productID := f.seedProduct(t, 50)

	first, err := f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NotNil(t, first[0].InvoiceNo)
	assert.Equal(t, "INV001", *first[0].InvoiceNo)
	assert.Nil(t, first[0].EstimatedInvoice)
	assert.True(t, first[0].IsValidBill)

	second, err := f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	require.NoError(t, err)
	assert.Equal(t, "INV002", *second[0].InvoiceNo)
}

func TestCreateEstimatedUsesIndependentNumberLine(t *testing.T) {
	f := setupBillService(t, 100)
	ctx := context.Background()
	productID := f.seedProduct(t, 50)

	_, err := f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	require.NoError(t, err)

	estimated, err := f.svc.Create(ctx, f.request(billdomain.BillTypeEstimated, lineItem(productID, 1)))
	require.NoError(t, err)
	require.NotNil(t, estimated[0].EstimatedInvoice)
	assert.Equal(t, "INV001", *estimated[0].EstimatedInvoice, "estimated line starts at 1 regardless of original bills")
	assert.Nil(t, estimated[0].InvoiceNo)
	assert.False(t, estimated[0].IsValidBill)
}

func TestCreateMultiLineSharesNumberAndChargesPerLine(t *testing.T) {
	f := setupBillService(t, 100)
	productA := f.seedProduct(t, 10)
	productB := f.seedProduct(t, 10)

	bills, err := f.svc.Create(context.Background(), f.request(
		billdomain.BillTypeOriginal,
		lineItem(productA, 2),
		lineItem(productB, 3),
	))
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, *bills[0].InvoiceNo, *bills[1].InvoiceNo)

	var tracker trackerdomain.PlanTracker
	require.NoError(t, f.db.Where("org_id = ?", f.orgID).Take(&tracker).Error)
	assert.Equal(t, 2, tracker.CountBillsCreation)
	assert.Equal(t, 2, tracker.CountAPICalls)

	var productRowA, productRowB inventorydomain.Product
	require.NoError(t, f.db.Take(&productRowA, "id = ?", productA).Error)
	require.NoError(t, f.db.Take(&productRowB, "id = ?", productB).Error)
	assert.Equal(t, int64(8), productRowA.Quantity)
	assert.Equal(t, int64(7), productRowB.Quantity)
}

func TestCreateRejectedAtCeilingLeavesNothingBehind(t *testing.T) {
	f := setupBillService(t, 1)
	ctx := context.Background()
	productID := f.seedProduct(t, 10)

	_, err := f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	assert.ErrorIs(t, err, trackerdomain.ErrQuotaExceeded)

	var count int64
	require.NoError(t, f.db.Model(&billdomain.CustomerBill{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var product inventorydomain.Product
	require.NoError(t, f.db.Take(&product, "id = ?", productID).Error)
	assert.Equal(t, int64(9), product.Quantity, "rejected bill must not touch stock")
}

func TestCreateInsufficientStockRollsBackWholeBill(t *testing.T) {
	f := setupBillService(t, 100)
	productA := f.seedProduct(t, 10)
	productB := f.seedProduct(t, 1)

	_, err := f.svc.Create(context.Background(), f.request(
		billdomain.BillTypeOriginal,
		lineItem(productA, 2),
		lineItem(productB, 5),
	))
	assert.ErrorIs(t, err, inventorydomain.ErrInsufficientStock)

	var count int64
	require.NoError(t, f.db.Model(&billdomain.CustomerBill{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var productRowA inventorydomain.Product
	require.NoError(t, f.db.Take(&productRowA, "id = ?", productA).Error)
	assert.Equal(t, int64(10), productRowA.Quantity)

	var tracker trackerdomain.PlanTracker
	require.NoError(t, f.db.Where("org_id = ?", f.orgID).Take(&tracker).Error)
	assert.Equal(t, 0, tracker.CountBillsCreation)
}

func TestNumberContinuesPastPadWidth(t *testing.T) {
	f := setupBillService(t, 10000)
	ctx := context.Background()
	productID := f.seedProduct(t, 10)

	number := "INV999"
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&billdomain.CustomerBill{
		ID:           f.node.Generate(),
		ShopkeeperID: f.shopkeeperID,
		OrgID:        f.orgID,
		InvoiceNo:    &number,
		IsValidBill:  true,
		InvoiceDate:  now,
		InventoryID:  productID,
		ProductName:  "Galaxy A15",
		Quantity:     1,
		ProductPrice: 13999,
		ProductTotal: 13999,
		FinalTotal:   13999,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)

	bills, err := f.svc.Create(ctx, f.request(billdomain.BillTypeOriginal, lineItem(productID, 1)))
	require.NoError(t, err)
	assert.Equal(t, "INV1000", *bills[0].InvoiceNo)
}
