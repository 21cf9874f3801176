package authorization

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthz(t *testing.T) (Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&subuserdomain.SubUser{}))

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
	return svc, db, node
}

func TestShopkeeperManagesOwnSide(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()
	actor := "shopkeeper:" + node.Generate().String()
	orgID := node.Generate().String()

	assert.NoError(t, svc.Authorize(ctx, actor, orgID, ObjectOrganization, ActionOrganizationCreate))
	assert.NoError(t, svc.Authorize(ctx, actor, orgID, ObjectBill, ActionBillCreate))
	assert.NoError(t, svc.Authorize(ctx, actor, orgID, ObjectOrder, ActionOrderMake))

	// Deciding orders is the supplier's call.
	assert.ErrorIs(t, svc.Authorize(ctx, actor, orgID, ObjectOrder, ActionOrderDecide), ErrForbidden)
}

func TestSupplierDecidesButCannotBill(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()
	actor := "supplier:" + node.Generate().String()
	orgID := node.Generate().String()

	assert.NoError(t, svc.Authorize(ctx, actor, orgID, ObjectOrder, ActionOrderDecide))
	assert.ErrorIs(t, svc.Authorize(ctx, actor, orgID, ObjectBill, ActionBillCreate), ErrForbidden)
}

func TestSubUserRoleComesFromRow(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	orgID := node.Generate()
	salesperson := node.Generate()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&subuserdomain.SubUser{
		ID:           salesperson,
		ShopkeeperID: node.Generate(),
		OrgID:        orgID,
		FullName:     "Ravi",
		Phone:        "9000000007",
		Role:         subuserdomain.RoleSalesPerson,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)

	actor := "subuser:" + salesperson.String()
	assert.NoError(t, svc.Authorize(ctx, actor, orgID.String(), ObjectBill, ActionBillCreate))
	assert.ErrorIs(t, svc.Authorize(ctx, actor, orgID.String(), ObjectSubUser, ActionSubUserCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, actor, orgID.String(), ObjectInventory, ActionInventoryCreate), ErrForbidden)
}

func TestUnknownSubUserIsForbidden(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()

	actor := "subuser:" + node.Generate().String()
	err := svc.Authorize(ctx, actor, node.Generate().String(), ObjectBill, ActionBillCreate)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMalformedActorRejected(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()
	orgID := node.Generate().String()

	assert.ErrorIs(t, svc.Authorize(ctx, "intruder", orgID, ObjectBill, ActionBillCreate), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "shopkeeper:not-a-number", orgID, ObjectBill, ActionBillCreate), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "", orgID, ObjectBill, ActionBillCreate), ErrInvalidActor)
}
