package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopstack/shopstack/internal/authorization"
	"github.com/shopstack/shopstack/internal/bill"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	"github.com/shopstack/shopstack/internal/config"
	"github.com/shopstack/shopstack/internal/inventory"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	"github.com/shopstack/shopstack/internal/observability"
	obslogger "github.com/shopstack/shopstack/internal/observability/logger"
	obsmetrics "github.com/shopstack/shopstack/internal/observability/metrics"
	"github.com/shopstack/shopstack/internal/order"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	"github.com/shopstack/shopstack/internal/organization"
	organizationdomain "github.com/shopstack/shopstack/internal/organization/domain"
	"github.com/shopstack/shopstack/internal/plan"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	"github.com/shopstack/shopstack/internal/plantracker"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	"github.com/shopstack/shopstack/internal/report"
	reportdomain "github.com/shopstack/shopstack/internal/report/domain"
	"github.com/shopstack/shopstack/internal/sequence"
	"github.com/shopstack/shopstack/internal/shopkeeper"
	"github.com/shopstack/shopstack/internal/subuser"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	shopkeeper.Module,
	sequence.Module,
	plan.Module,
	plantracker.Module,
	organization.Module,
	subuser.Module,
	inventory.Module,
	bill.Module,
	order.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log,
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	authzSvc        authorization.Service
	organizationSvc organizationdomain.Service
	subUserSvc      subuserdomain.Service
	inventorySvc    inventorydomain.Service
	billSvc         billdomain.Service
	orderSvc        orderdomain.Service
	reportSvc       reportdomain.Service
	planSvc         plandomain.Service
	trackerSvc      trackerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuthzSvc        authorization.Service
	OrganizationSvc organizationdomain.Service
	SubUserSvc      subuserdomain.Service
	InventorySvc    inventorydomain.Service
	BillSvc         billdomain.Service
	OrderSvc        orderdomain.Service
	ReportSvc       reportdomain.Service
	PlanSvc         plandomain.Service
	TrackerSvc      trackerdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		authzSvc:        p.AuthzSvc,
		organizationSvc: p.OrganizationSvc,
		subUserSvc:      p.SubUserSvc,
		inventorySvc:    p.InventorySvc,
		billSvc:         p.BillSvc,
		orderSvc:        p.OrderSvc,
		reportSvc:       p.ReportSvc,
		planSvc:         p.PlanSvc,
		trackerSvc:      p.TrackerSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.Use(s.OrgContext())

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.GET("/usage", s.authorizeOrgAction(authorization.ObjectPlan, authorization.ActionPlanView), s.GetUsage)

	// -------- Organizations --------
	api.GET("/organizations", s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionOrganizationView), s.ListOrganizations)
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations/:id", s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionOrganizationView), s.GetOrganizationByID)
	api.PATCH("/organizations/:id", s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionOrganizationUpdate), s.UpdateOrganization)
	api.DELETE("/organizations/:id", s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionOrganizationDelete), s.DeleteOrganization)

	// -------- Sub users --------
	api.GET("/sub-users", s.authorizeOrgAction(authorization.ObjectSubUser, authorization.ActionSubUserView), s.ListSubUsers)
	api.POST("/sub-users", s.authorizeOrgAction(authorization.ObjectSubUser, authorization.ActionSubUserCreate), s.CreateSubUser)
	api.GET("/sub-users/:id", s.authorizeOrgAction(authorization.ObjectSubUser, authorization.ActionSubUserView), s.GetSubUserByID)
	api.PATCH("/sub-users/:id", s.authorizeOrgAction(authorization.ObjectSubUser, authorization.ActionSubUserUpdate), s.UpdateSubUser)
	api.DELETE("/sub-users/:id", s.authorizeOrgAction(authorization.ObjectSubUser, authorization.ActionSubUserDelete), s.DeleteSubUser)

	// -------- Inventory --------
	api.GET("/inventories", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryView), s.ListProducts)
	api.POST("/inventories", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryCreate), s.CreateProduct)
	api.GET("/inventories/:id", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryView), s.GetProductByID)
	api.PATCH("/inventories/:id", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryUpdate), s.UpdateProduct)
	api.DELETE("/inventories/:id", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryDelete), s.DeleteProduct)
	// Resolving a barcode is a plain read; the scan endpoint charges the
	// scan counter.
	api.GET("/barcodes/:barcode", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryView), s.GetProductByBarcode)
	api.POST("/barcodes/:barcode/scan", s.authorizeOrgAction(authorization.ObjectInventory, authorization.ActionInventoryScan), s.ScanBarcode)

	// -------- Bills --------
	api.GET("/bills", s.authorizeOrgAction(authorization.ObjectBill, authorization.ActionBillView), s.ListBills)
	api.POST("/bills", s.authorizeOrgAction(authorization.ObjectBill, authorization.ActionBillCreate), s.CreateBill)
	api.GET("/bills/:type/:number", s.authorizeOrgAction(authorization.ObjectBill, authorization.ActionBillView), s.GetBillByNumber)

	// -------- Orders --------
	api.GET("/orders", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderView), s.ListOrders)
	api.POST("/orders", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderMake), s.MakeOrder)
	api.GET("/orders/:id", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrderByID)
	api.POST("/orders/:id/decision", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderDecide), s.DecideOrder)
	api.POST("/orders/:id/delivery", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderDeliver), s.ConfirmOrderDelivery)
	api.PATCH("/orders/:id/bill", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderUpdate), s.UpdateOrderBillTotals)

	// -------- Reports --------
	api.GET("/reports/sales", s.authorizeOrgAction(authorization.ObjectReport, authorization.ActionReportView), s.ViewSalesReport)
	api.GET("/reports/sales/download", s.authorizeOrgAction(authorization.ObjectReport, authorization.ActionReportDownload), s.DownloadSalesReport)
}
