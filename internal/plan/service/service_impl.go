package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo plandomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo plandomain.Repository
}

func NewService(p ServiceParam) plandomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("plan.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]plandomain.Plan, error) {
	return s.repo.ListByStatus(ctx, s.db, plandomain.PlanStatusActive)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (plandomain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return plandomain.Plan{}, err
	}
	return *plan, nil
}

func (s *Service) CeilingFor(ctx context.Context, planID snowflake.ID, dim plandomain.Dimension) (int, error) {
	plan, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return 0, err
	}
	return plan.CeilingFor(dim)
}
