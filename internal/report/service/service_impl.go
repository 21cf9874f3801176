package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	reportdomain "github.com/shopstack/shopstack/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       reportdomain.Repository
	TrackerSvc trackerdomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       reportdomain.Repository
	trackerSvc trackerdomain.Service
}

func NewService(p ServiceParam) reportdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("report.service"),
		repo:       p.Repo,
		trackerSvc: p.TrackerSvc,
	}
}

func (s *Service) View(ctx context.Context, orgID snowflake.ID, filter reportdomain.ViewFilter) ([]reportdomain.InvoiceSummary, error) {
	if (filter.StartDate == nil) != (filter.EndDate == nil) {
		return nil, reportdomain.ErrInvalidRange
	}
	if filter.StartDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, reportdomain.ErrInvalidRange
	}

	var summaries []reportdomain.InvoiceSummary
	err := s.trackerSvc.WithQuota(ctx, orgID, plandomain.DimReportViewsPerDay, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		var err error
		summaries, err = s.repo.SalesByInvoice(ctx, tx, orgID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Service) Download(ctx context.Context, orgID snowflake.ID, start, end time.Time) ([]reportdomain.ProductSales, error) {
	if end.Before(start) {
		return nil, reportdomain.ErrInvalidRange
	}

	var sales []reportdomain.ProductSales
	err := s.trackerSvc.WithQuota(ctx, orgID, plandomain.DimReportsDownload, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		var err error
		sales, err = s.repo.SalesByProduct(ctx, tx, orgID, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}
