package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopstack/shopstack/internal/authorization"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	"github.com/shopstack/shopstack/internal/config"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	orderguard "github.com/shopstack/shopstack/internal/order/guard"
	organizationdomain "github.com/shopstack/shopstack/internal/organization/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	reportdomain "github.com/shopstack/shopstack/internal/report/domain"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"github.com/shopstack/shopstack/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAuthzService struct {
	denied bool
	calls  int
}

func (f *fakeAuthzService) Authorize(ctx context.Context, actor, orgID, object, action string) error {
	f.calls++
	if f.denied {
		return authorization.ErrForbidden
	}
	return nil
}

type fakeBillService struct {
	createErr error
	created   []billdomain.CustomerBill
	lastReq   billdomain.CreateBillRequest
}

func (f *fakeBillService) Create(ctx context.Context, req billdomain.CreateBillRequest) ([]billdomain.CustomerBill, error) {
	f.lastReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeBillService) ListByOrg(ctx context.Context, orgID snowflake.ID, filter billdomain.ListFilter) ([]billdomain.CustomerBill, error) {
	return f.created, nil
}

func (f *fakeBillService) GetByNumber(ctx context.Context, orgID snowflake.ID, billType billdomain.BillType, number string) ([]billdomain.CustomerBill, error) {
	if len(f.created) == 0 {
		return nil, billdomain.ErrNotFound
	}
	return f.created, nil
}

type fakeOrderService struct {
	decideErr error
	order     orderdomain.Order
}

func (f *fakeOrderService) Make(ctx context.Context, req orderdomain.MakeOrderRequest) (orderdomain.Order, []orderdomain.OrderItem, error) {
	return f.order, nil, nil
}

func (f *fakeOrderService) GetByID(ctx context.Context, id snowflake.ID) (orderdomain.Order, []orderdomain.OrderItem, error) {
	return f.order, nil, nil
}

func (f *fakeOrderService) ListBySupplier(ctx context.Context, supplierID snowflake.ID, filter orderdomain.ListFilter) ([]orderdomain.Order, error) {
	return []orderdomain.Order{f.order}, nil
}

func (f *fakeOrderService) ListByOrg(ctx context.Context, orgID snowflake.ID, filter orderdomain.ListFilter) ([]orderdomain.Order, error) {
	return []orderdomain.Order{f.order}, nil
}

func (f *fakeOrderService) Decide(ctx context.Context, orderID snowflake.ID, status orderdomain.ApprovalStatus) (orderdomain.Order, error) {
	if f.decideErr != nil {
		return orderdomain.Order{}, f.decideErr
	}
	return f.order, nil
}

func (f *fakeOrderService) MarkDelivered(ctx context.Context, orderID snowflake.ID, side orderdomain.DeliverySide) (orderdomain.Order, error) {
	return f.order, nil
}

func (f *fakeOrderService) UpdateBillTotals(ctx context.Context, orderID snowflake.ID, req orderdomain.BillTotalsRequest) error {
	return nil
}

func (f *fakeOrderService) ExpireStale(ctx context.Context, threshold time.Duration) (int, error) {
	return 0, nil
}

type fakeTrackerService struct {
	usage *trackerdomain.PlanTracker
}

func (f *fakeTrackerService) CheckQuota(ctx context.Context, orgID snowflake.ID, dim plandomain.Dimension) error {
	return nil
}

func (f *fakeTrackerService) WithQuota(ctx context.Context, orgID snowflake.ID, dim plandomain.Dimension, fn func(tx *gorm.DB, grant *trackerdomain.Grant) error) error {
	return fn(nil, &trackerdomain.Grant{})
}

func (f *fakeTrackerService) WithQuotaForShopkeeper(ctx context.Context, shopkeeperID snowflake.ID, dim plandomain.Dimension, fn func(tx *gorm.DB, grant *trackerdomain.Grant) error) error {
	return fn(nil, &trackerdomain.Grant{})
}

func (f *fakeTrackerService) Provision(ctx context.Context, tx *gorm.DB, shopkeeperID, orgID snowflake.ID) error {
	return nil
}

func (f *fakeTrackerService) Usage(ctx context.Context, orgID snowflake.ID) (*trackerdomain.PlanTracker, error) {
	if f.usage == nil {
		return nil, trackerdomain.ErrTrackerNotFound
	}
	return f.usage, nil
}

func (f *fakeTrackerService) ResetCounter(ctx context.Context, dim plandomain.Dimension) (int64, error) {
	return 0, nil
}

type fakeOrganizationService struct{}

func (fakeOrganizationService) Register(ctx context.Context, req organizationdomain.CreateOrganizationRequest) (*organizationdomain.Organization, error) {
	return &organizationdomain.Organization{OrgName: req.OrgName}, nil
}

func (fakeOrganizationService) GetByID(ctx context.Context, id snowflake.ID) (*organizationdomain.Organization, error) {
	return nil, organizationdomain.ErrNotFound
}

func (fakeOrganizationService) ListByShopkeeper(ctx context.Context, shopkeeperID snowflake.ID) ([]organizationdomain.Organization, error) {
	return nil, nil
}

func (fakeOrganizationService) Update(ctx context.Context, id snowflake.ID, req organizationdomain.UpdateOrganizationRequest) (*organizationdomain.Organization, error) {
	return nil, organizationdomain.ErrNotFound
}

func (fakeOrganizationService) Delete(ctx context.Context, shopkeeperID, orgID snowflake.ID) error {
	return organizationdomain.ErrDeleteActiveOrg
}

type fakeSubUserService struct{}

func (fakeSubUserService) Create(ctx context.Context, req subuserdomain.CreateSubUserRequest) (*subuserdomain.SubUser, error) {
	return &subuserdomain.SubUser{FullName: req.FullName, Role: req.Role}, nil
}

func (fakeSubUserService) GetByID(ctx context.Context, id snowflake.ID) (*subuserdomain.SubUser, error) {
	return nil, subuserdomain.ErrNotFound
}

func (fakeSubUserService) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]subuserdomain.SubUser, error) {
	return nil, nil
}

func (fakeSubUserService) Update(ctx context.Context, id snowflake.ID, req subuserdomain.UpdateSubUserRequest) (*subuserdomain.SubUser, error) {
	return nil, subuserdomain.ErrNotFound
}

func (fakeSubUserService) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	return nil
}

type fakeInventoryService struct {
	product *inventorydomain.Product
	scans   int
}

func (f *fakeInventoryService) Create(ctx context.Context, req inventorydomain.CreateProductRequest) (*inventorydomain.Product, error) {
	return &inventorydomain.Product{ProductName: req.ProductName}, nil
}

func (f *fakeInventoryService) GetByID(ctx context.Context, id snowflake.ID) (*inventorydomain.Product, error) {
	if f.product == nil {
		return nil, inventorydomain.ErrNotFound
	}
	return f.product, nil
}

func (f *fakeInventoryService) GetByBarcode(ctx context.Context, orgID snowflake.ID, barcode string) (*inventorydomain.Product, error) {
	if f.product == nil || f.product.Barcode != barcode {
		return nil, inventorydomain.ErrNotFound
	}
	return f.product, nil
}

func (f *fakeInventoryService) List(ctx context.Context, orgID snowflake.ID, filter inventorydomain.ListFilter, page pagination.Pagination) ([]inventorydomain.Product, pagination.PageInfo, error) {
	return nil, pagination.PageInfo{}, nil
}

func (f *fakeInventoryService) Update(ctx context.Context, id snowflake.ID, req inventorydomain.UpdateProductRequest) (*inventorydomain.Product, error) {
	return nil, inventorydomain.ErrNotFound
}

func (f *fakeInventoryService) Delete(ctx context.Context, id snowflake.ID) error {
	return nil
}

func (f *fakeInventoryService) RecordBarcodeScan(ctx context.Context, orgID snowflake.ID) error {
	f.scans++
	return nil
}

type fakeReportService struct{}

func (fakeReportService) View(ctx context.Context, orgID snowflake.ID, filter reportdomain.ViewFilter) ([]reportdomain.InvoiceSummary, error) {
	return nil, nil
}

func (fakeReportService) Download(ctx context.Context, orgID snowflake.ID, start, end time.Time) ([]reportdomain.ProductSales, error) {
	return nil, nil
}

type fakePlanService struct{}

func (fakePlanService) List(ctx context.Context) ([]plandomain.Plan, error) {
	return nil, nil
}

func (fakePlanService) GetByID(ctx context.Context, id snowflake.ID) (plandomain.Plan, error) {
	return plandomain.Plan{}, plandomain.ErrNotFound
}

func (fakePlanService) CeilingFor(ctx context.Context, planID snowflake.ID, dim plandomain.Dimension) (int, error) {
	return 0, plandomain.ErrNotFound
}

type serverFixture struct {
	server    *Server
	authz     *fakeAuthzService
	bills     *fakeBillService
	orders    *fakeOrderService
	inventory *fakeInventoryService
	tracker   *fakeTrackerService
	genID     *snowflake.Node
}

func newTestServer(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &serverFixture{
		authz:     &fakeAuthzService{},
		bills:     &fakeBillService{},
		orders:    &fakeOrderService{},
		inventory: &fakeInventoryService{},
		tracker:   &fakeTrackerService{},
		genID:     node,
	}

	f.server = NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{Environment: "test"},
		GenID:           node,
		AuthzSvc:        f.authz,
		OrganizationSvc: fakeOrganizationService{},
		SubUserSvc:      fakeSubUserService{},
		InventorySvc:    f.inventory,
		BillSvc:         f.bills,
		OrderSvc:        f.orders,
		ReportSvc:       fakeReportService{},
		PlanSvc:         fakePlanService{},
		TrackerSvc:      f.tracker,
	})
	return f
}

func (f *serverFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func tenantHeaders(f *serverFixture) map[string]string {
	shopkeeperID := f.genID.Generate()
	return map[string]string{
		"X-Org-Id":        f.genID.Generate().String(),
		"X-Shopkeeper-Id": shopkeeperID.String(),
		"X-Actor":         "shopkeeper:" + shopkeeperID.String(),
	}
}

func TestQuotaDenialBodyIsExact(t *testing.T) {
	f := newTestServer(t)
	f.bills.createErr = trackerdomain.ErrQuotaExceeded

	rec := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{
		"bill_type": "original",
		"items":     []gin.H{{"quantity": 1}},
	}, tenantHeaders(f))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message": "You have reached your limit."}`, rec.Body.String())
}

func TestTransientConflictMapsTo503(t *testing.T) {
	f := newTestServer(t)
	f.bills.createErr = trackerdomain.ErrTransientConflict

	rec := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{"bill_type": "original"}, tenantHeaders(f))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "transient_conflict", resp.Error.Type)
}

func TestIntegrityFaultStaysGeneric(t *testing.T) {
	f := newTestServer(t)
	f.bills.createErr = trackerdomain.ErrTrackerNotFound

	rec := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{"bill_type": "original"}, tenantHeaders(f))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Error.Type)
	assert.NotContains(t, rec.Body.String(), "tracker")
}

func TestValidationFaultMapsTo400(t *testing.T) {
	f := newTestServer(t)
	f.bills.createErr = billdomain.ErrNoLineItems

	rec := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{"bill_type": "original"}, tenantHeaders(f))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
}

func TestStateConflictMapsTo409(t *testing.T) {
	f := newTestServer(t)
	f.orders.decideErr = orderguard.ErrOrderNotPending

	rec := f.do(t, http.MethodPost, "/api/v1/orders/"+f.genID.Generate().String()+"/decision",
		gin.H{"status": "Approved"}, tenantHeaders(f))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestForbiddenActorIsRejectedBeforeHandler(t *testing.T) {
	f := newTestServer(t)
	f.authz.denied = true

	rec := f.do(t, http.MethodGet, "/api/v1/orders", nil, tenantHeaders(f))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, f.authz.calls)
}

func TestMissingActorIsUnauthorized(t *testing.T) {
	f := newTestServer(t)

	headers := tenantHeaders(f)
	delete(headers, "X-Actor")
	rec := f.do(t, http.MethodGet, "/api/v1/orders", nil, headers)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, f.authz.calls)
}

func TestTenantHeadersFlowIntoRequest(t *testing.T) {
	f := newTestServer(t)

	headers := tenantHeaders(f)
	rec := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{
		"bill_type":     "original",
		"customer_name": "Asha",
		"items":         []gin.H{{"quantity": 1}},
	}, headers)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, headers["X-Org-Id"], f.bills.lastReq.OrgID.String())
	assert.Equal(t, headers["X-Shopkeeper-Id"], f.bills.lastReq.ShopkeeperID.String())
	assert.Equal(t, "Asha", f.bills.lastReq.CustomerName)
}

func TestMalformedTenantHeaderIs400(t *testing.T) {
	f := newTestServer(t)

	headers := tenantHeaders(f)
	headers["X-Org-Id"] = "not-a-snowflake"
	rec := f.do(t, http.MethodGet, "/api/v1/bills", nil, headers)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanChargesAfterLookup(t *testing.T) {
	f := newTestServer(t)
	f.inventory.product = &inventorydomain.Product{Barcode: "8901234567890"}

	rec := f.do(t, http.MethodPost, "/api/v1/barcodes/8901234567890/scan", nil, tenantHeaders(f))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.inventory.scans)

	// A miss resolves before the counter is touched.
	rec = f.do(t, http.MethodPost, "/api/v1/barcodes/unknown/scan", nil, tenantHeaders(f))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, f.inventory.scans)
}

func TestUsageEndpointReturnsCounterRow(t *testing.T) {
	f := newTestServer(t)
	f.tracker.usage = &trackerdomain.PlanTracker{CountProducts: 7, CountBillsCreation: 3}

	rec := f.do(t, http.MethodGet, "/api/v1/usage", nil, tenantHeaders(f))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data trackerdomain.PlanTracker `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Data.CountProducts)
	assert.Equal(t, 3, resp.Data.CountBillsCreation)
}
