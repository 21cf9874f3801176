package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	"github.com/shopstack/shopstack/internal/clock"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	"github.com/shopstack/shopstack/internal/sequence"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Bills draw from two numbering lines over the same table: original bills
// use invoice_no, estimated bills estimated_invoice. Both print as INV.
var (
	invoiceNamespace = sequence.Namespace{
		Table:     "customer_bills",
		Column:    "invoice_no",
		Partition: "org_id",
		Prefix:    "INV",
	}
	estimatedNamespace = sequence.Namespace{
		Table:     "customer_bills",
		Column:    "estimated_invoice",
		Partition: "org_id",
		Prefix:    "INV",
	}
)

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          billdomain.Repository
	InventoryRepo inventorydomain.Repository
	TrackerSvc    trackerdomain.Service
	Allocator     sequence.Allocator
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID         *snowflake.Node
	clock         clock.Clock
	repo          billdomain.Repository
	inventoryRepo inventorydomain.Repository
	trackerSvc    trackerdomain.Service
	allocator     sequence.Allocator
}

func NewService(p ServiceParam) billdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("bill.service"),

		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		inventoryRepo: p.InventoryRepo,
		trackerSvc:    p.TrackerSvc,
		allocator:     p.Allocator,
	}
}

func (s *Service) Create(ctx context.Context, req billdomain.CreateBillRequest) ([]billdomain.CustomerBill, error) {
	if !req.BillType.Valid() {
		return nil, fmt.Errorf("%w: unknown bill type %q", billdomain.ErrInvalidRequest, req.BillType)
	}
	if len(req.Items) == 0 {
		return nil, billdomain.ErrNoLineItems
	}
	for i, item := range req.Items {
		if item.InventoryID == 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d needs an inventory id and a positive quantity", billdomain.ErrInvalidRequest, i)
		}
	}

	ns := invoiceNamespace
	if req.BillType == billdomain.BillTypeEstimated {
		ns = estimatedNamespace
	}

	var bills []billdomain.CustomerBill
	err := s.trackerSvc.WithQuota(ctx, req.OrgID, plandomain.DimBillsCreation, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		_, number, err := s.allocator.Next(ctx, tx, ns, req.OrgID)
		if err != nil {
			return err
		}

		invoiceDate := req.InvoiceDate
		if invoiceDate.IsZero() {
			invoiceDate = s.clock.Now()
		}
		now := s.clock.Now()

		bills = bills[:0]
		for _, item := range req.Items {
			bill := billdomain.CustomerBill{
				ID:              s.genID.Generate(),
				ShopkeeperID:    req.ShopkeeperID,
				SubUserID:       req.SubUserID,
				OrgID:           req.OrgID,
				CustomerName:    req.CustomerName,
				CustomerPhone:   req.CustomerPhone,
				CustomerGST:     req.CustomerGST,
				CustomerAddress: req.CustomerAddress,
				IsValidBill:     req.BillType == billdomain.BillTypeOriginal,
				InvoiceDate:     invoiceDate,
				InventoryID:     item.InventoryID,
				ProductName:     item.ProductName,
				ProductModel:    item.ProductModel,
				Quantity:        item.Quantity,
				ProductPrice:    item.ProductPrice,
				IMEI1:           item.IMEI1,
				IMEI2:           item.IMEI2,
				Amount:          item.ProductPrice * float64(item.Quantity),
				ProductTotal:    req.ProductTotal,
				Discount:        req.Discount,
				SGST:            req.SGST,
				CGST:            req.CGST,
				FinalTotal:      req.FinalTotal,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if req.BillType == billdomain.BillTypeOriginal {
				bill.InvoiceNo = &number
			} else {
				bill.EstimatedInvoice = &number
			}

			if err := s.repo.Insert(ctx, tx, &bill); err != nil {
				return err
			}
			if err := s.inventoryRepo.DecrementStock(ctx, tx, item.InventoryID, item.Quantity); err != nil {
				return err
			}
			grant.Consume(1)
			bills = append(bills, bill)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("customer bill created",
		zap.Int64("org_id", int64(req.OrgID)),
		zap.String("bill_type", string(req.BillType)),
		zap.Int("lines", len(bills)),
	)
	return bills, nil
}

func (s *Service) ListByOrg(ctx context.Context, orgID snowflake.ID, filter billdomain.ListFilter) ([]billdomain.CustomerBill, error) {
	return s.repo.ListByOrg(ctx, s.db, orgID, filter)
}

func (s *Service) GetByNumber(ctx context.Context, orgID snowflake.ID, billType billdomain.BillType, number string) ([]billdomain.CustomerBill, error) {
	return s.repo.FindByNumber(ctx, s.db, orgID, billType, number)
}
