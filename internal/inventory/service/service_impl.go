package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	"github.com/shopstack/shopstack/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       inventorydomain.Repository
	TrackerSvc trackerdomain.Service
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	repo       inventorydomain.Repository
	trackerSvc trackerdomain.Service
}

func NewService(p ServiceParam) inventorydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("inventory.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		trackerSvc: p.TrackerSvc,
	}
}

func (s *Service) Create(ctx context.Context, req inventorydomain.CreateProductRequest) (*inventorydomain.Product, error) {
	if req.ProductName == "" || req.ProductModel == "" {
		return nil, fmt.Errorf("%w: product name and model are required", inventorydomain.ErrInvalidRequest)
	}
	if req.OrgID == 0 {
		return nil, fmt.Errorf("%w: org id is required", inventorydomain.ErrInvalidRequest)
	}

	now := s.clock.Now()
	product := &inventorydomain.Product{
		ID:                 s.genID.Generate(),
		ShopkeeperID:       req.ShopkeeperID,
		SubUserID:          req.SubUserID,
		OrgID:              req.OrgID,
		ProductCategory:    req.ProductCategory,
		ProductBrand:       req.ProductBrand,
		ProductModel:       req.ProductModel,
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ProductColor:       req.ProductColor,
		ProductPrice:       req.ProductPrice,
		HSNCode:            req.HSNCode,
		Barcode:            strings.TrimSpace(req.Barcode),
		SubCategory:        req.SubCategory,
		Quantity:           req.Quantity,
		LowStockQuantity:   req.LowStockQuantity,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.trackerSvc.WithQuota(ctx, req.OrgID, plandomain.DimProducts, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		if product.Barcode != "" {
			exists, err := s.repo.BarcodeExists(ctx, tx, req.OrgID, product.Barcode)
			if err != nil {
				return err
			}
			if exists {
				return inventorydomain.ErrBarcodeExists
			}
		}
		return s.repo.Insert(ctx, tx, product)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created",
		zap.Int64("org_id", int64(req.OrgID)),
		zap.String("product_name", product.ProductName),
	)
	return product, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*inventorydomain.Product, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) GetByBarcode(ctx context.Context, orgID snowflake.ID, barcode string) (*inventorydomain.Product, error) {
	return s.repo.FindByBarcode(ctx, s.db, orgID, barcode)
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, filter inventorydomain.ListFilter, page pagination.Pagination) ([]inventorydomain.Product, pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, orgID, filter, page)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req inventorydomain.UpdateProductRequest) (*inventorydomain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if req.ProductCategory != "" {
		product.ProductCategory = req.ProductCategory
	}
	if req.ProductBrand != "" {
		product.ProductBrand = req.ProductBrand
	}
	if req.ProductModel != "" {
		product.ProductModel = req.ProductModel
	}
	if req.ProductName != "" {
		product.ProductName = req.ProductName
	}
	if req.ProductDescription != "" {
		product.ProductDescription = req.ProductDescription
	}
	if req.ProductColor != "" {
		product.ProductColor = req.ProductColor
	}
	if req.ProductPrice != nil {
		product.ProductPrice = *req.ProductPrice
	}
	if req.HSNCode != "" {
		product.HSNCode = req.HSNCode
	}
	if req.SubCategory != "" {
		product.SubCategory = req.SubCategory
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.LowStockQuantity != nil {
		product.LowStockQuantity = *req.LowStockQuantity
	}
	product.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.repo.SoftDelete(ctx, s.db, id)
}

func (s *Service) RecordBarcodeScan(ctx context.Context, orgID snowflake.ID) error {
	return s.trackerSvc.WithQuota(ctx, orgID, plandomain.DimBarcodeScans, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		return nil
	})
}
