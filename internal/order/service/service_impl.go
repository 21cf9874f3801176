package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	"github.com/shopstack/shopstack/internal/order/guard"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	"github.com/shopstack/shopstack/internal/sequence"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Order numbers are issued per supplier. The unique index on
// (supplier_id, order_no) turns a lost allocation race into a duplicate-key
// error, which Make absorbs by retrying the whole transaction.
var orderNamespace = sequence.Namespace{
	Table:     "orders",
	Column:    "order_no",
	Partition: "supplier_id",
	Prefix:    "INV",
}

const allocationAttempts = 3

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       orderdomain.Repository
	TrackerSvc trackerdomain.Service
	Allocator  sequence.Allocator
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	repo       orderdomain.Repository
	trackerSvc trackerdomain.Service
	allocator  sequence.Allocator
}

func NewService(p ServiceParam) orderdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("order.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		trackerSvc: p.TrackerSvc,
		allocator:  p.Allocator,
	}
}

func (s *Service) Make(ctx context.Context, req orderdomain.MakeOrderRequest) (orderdomain.Order, []orderdomain.OrderItem, error) {
	if req.ShopkeeperID == 0 || req.SupplierID == 0 || req.OrgID == 0 {
		return orderdomain.Order{}, nil, fmt.Errorf("%w: shopkeeper, supplier and organization are required", orderdomain.ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return orderdomain.Order{}, nil, orderdomain.ErrNoLineItems
	}
	for i, item := range req.Items {
		if item.SupplierProductID == 0 || item.Quantity <= 0 {
			return orderdomain.Order{}, nil, fmt.Errorf("%w: line %d needs a supplier product and a positive quantity", orderdomain.ErrInvalidRequest, i)
		}
	}

	var (
		order orderdomain.Order
		items []orderdomain.OrderItem
	)
	err := sequence.Insert(allocationAttempts, func() error {
		return s.trackerSvc.WithQuota(ctx, req.OrgID, plandomain.DimOrdersPerMonth, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
			_, number, err := s.allocator.Next(ctx, tx, orderNamespace, req.SupplierID)
			if err != nil {
				return err
			}

			now := s.clock.Now()
			order = orderdomain.Order{
				ID:             s.genID.Generate(),
				ShopkeeperID:   req.ShopkeeperID,
				SupplierID:     req.SupplierID,
				OrgID:          req.OrgID,
				SubUserID:      req.SubUserID,
				UserType:       req.UserType,
				OrderNo:        number,
				TotalAmt:       req.TotalAmt,
				ApprovalStatus: orderdomain.ApprovalStatusPending,
				OrderDate:      now,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := s.repo.Insert(ctx, tx, &order); err != nil {
				return err
			}

			items = items[:0]
			for _, line := range req.Items {
				items = append(items, orderdomain.OrderItem{
					ID:                s.genID.Generate(),
					OrderID:           order.ID,
					SupplierProductID: line.SupplierProductID,
					Quantity:          line.Quantity,
					ProductPrice:      line.ProductPrice,
					CreatedAt:         now,
					UpdatedAt:         now,
				})
			}
			return s.repo.InsertItems(ctx, tx, items)
		})
	})
	if err != nil {
		return orderdomain.Order{}, nil, err
	}

	s.log.Info("order placed",
		zap.Int64("order_id", int64(order.ID)),
		zap.Int64("supplier_id", int64(req.SupplierID)),
		zap.String("order_no", order.OrderNo),
	)
	return order, items, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (orderdomain.Order, []orderdomain.OrderItem, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return orderdomain.Order{}, nil, err
	}
	items, err := s.repo.ItemsByOrder(ctx, s.db, id)
	if err != nil {
		return orderdomain.Order{}, nil, err
	}
	return order, items, nil
}

func (s *Service) ListBySupplier(ctx context.Context, supplierID snowflake.ID, filter orderdomain.ListFilter) ([]orderdomain.Order, error) {
	return s.repo.ListBySupplier(ctx, s.db, supplierID, filter)
}

func (s *Service) ListByOrg(ctx context.Context, orgID snowflake.ID, filter orderdomain.ListFilter) ([]orderdomain.Order, error) {
	return s.repo.ListByOrg(ctx, s.db, orgID, filter)
}

func (s *Service) Decide(ctx context.Context, orderID snowflake.ID, status orderdomain.ApprovalStatus) (orderdomain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if err := guard.EnsureOrderCanBeDecided(order.ApprovalStatus, status); err != nil {
		return orderdomain.Order{}, err
	}

	// The WHERE clause re-checks Pending, so a racing decision or an
	// expiry sweep between the read and the update loses exactly one side.
	rows, err := s.repo.UpdateDecision(ctx, s.db, orderID, status, s.clock.Now())
	if err != nil {
		return orderdomain.Order{}, err
	}
	if rows == 0 {
		return orderdomain.Order{}, guard.ErrOrderNotPending
	}

	s.log.Info("order decided",
		zap.Int64("order_id", int64(orderID)),
		zap.String("status", string(status)),
	)
	return s.repo.FindByID(ctx, s.db, orderID)
}

func (s *Service) MarkDelivered(ctx context.Context, orderID snowflake.ID, side orderdomain.DeliverySide) (orderdomain.Order, error) {
	if !side.Valid() {
		return orderdomain.Order{}, fmt.Errorf("%w: unknown delivery side %q", orderdomain.ErrInvalidRequest, side)
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if err := guard.EnsureOrderCanBeDelivered(order.ApprovalStatus); err != nil {
		return orderdomain.Order{}, err
	}

	alreadyDelivered := order.SupplierDeliveryStatus
	if side == orderdomain.DeliverySideShopkeeper {
		alreadyDelivered = order.ShopkeeperDeliveryStatus
	}
	if alreadyDelivered {
		return order, nil
	}

	now := s.clock.Now()
	if side == orderdomain.DeliverySideSupplier {
		err = s.repo.MarkSupplierDelivered(ctx, s.db, orderID, now)
	} else {
		err = s.repo.MarkShopkeeperDelivered(ctx, s.db, orderID, now)
	}
	if err != nil {
		return orderdomain.Order{}, err
	}
	return s.repo.FindByID(ctx, s.db, orderID)
}

func (s *Service) UpdateBillTotals(ctx context.Context, orderID snowflake.ID, req orderdomain.BillTotalsRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateBillTotals(ctx, tx, orderID, req.CGST, req.SGST, req.Discount, req.FinalAmt, s.clock.Now()); err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := s.repo.UpdateItem(ctx, tx, item.ID, item.Quantity, item.ProductPrice); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) ExpireStale(ctx context.Context, threshold time.Duration) (int, error) {
	cutoff := s.clock.Now().Add(-threshold)
	stale, err := s.repo.FindExpirable(ctx, s.db, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, order := range stale {
		rows, err := s.repo.UpdateDecision(ctx, s.db, order.ID, orderdomain.ApprovalStatusExpired, s.clock.Now())
		if err != nil {
			s.log.Error("failed to expire order",
				zap.Int64("order_id", int64(order.ID)),
				zap.Error(err),
			)
			continue
		}
		if rows == 0 {
			// decided between the scan and the update
			continue
		}
		expired++
	}

	if expired > 0 {
		s.log.Info("expired stale orders", zap.Int("count", expired))
	}
	return expired, nil
}
