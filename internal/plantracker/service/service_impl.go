package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	shopkeeperdomain "github.com/shopstack/shopstack/internal/shopkeeper/domain"
	"github.com/shopstack/shopstack/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           trackerdomain.Repository
	ShopkeeperRepo shopkeeperdomain.Repository
	PlanRepo       plandomain.Repository
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID          *snowflake.Node
	clock          clock.Clock
	repo           trackerdomain.Repository
	shopkeeperRepo shopkeeperdomain.Repository
	planRepo       plandomain.Repository
}

func NewService(p ServiceParam) trackerdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("plantracker.service"),

		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		shopkeeperRepo: p.ShopkeeperRepo,
		planRepo:       p.PlanRepo,
	}
}

var serializableTx = &sql.TxOptions{Isolation: sql.LevelSerializable}

func (s *Service) CheckQuota(ctx context.Context, orgID snowflake.ID, dim plandomain.Dimension) error {
	tracker, err := s.repo.FindByOrgID(ctx, s.db, orgID)
	if err != nil {
		return err
	}
	ceiling, err := s.ceilingFor(ctx, s.db, tracker.ShopkeeperID, dim)
	if err != nil {
		return err
	}
	current, err := s.currentFor(ctx, s.db, tracker, dim)
	if err != nil {
		return err
	}
	if current >= ceiling {
		return trackerdomain.ErrQuotaExceeded
	}
	return nil
}

func (s *Service) WithQuota(ctx context.Context, orgID snowflake.ID, dim plandomain.Dimension, fn func(tx *gorm.DB, grant *trackerdomain.Grant) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tracker, err := s.repo.FindByOrgID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		ceiling, err := s.ceilingFor(ctx, tx, tracker.ShopkeeperID, dim)
		if err != nil {
			return err
		}
		current, err := s.currentFor(ctx, tx, tracker, dim)
		if err != nil {
			return err
		}
		if current >= ceiling {
			return trackerdomain.ErrQuotaExceeded
		}

		grant := &trackerdomain.Grant{}
		if err := fn(tx, grant); err != nil {
			return err
		}
		return s.applyGrant(ctx, tx, tracker, dim, grant)
	}, serializableTx)
	return s.classify(err, orgID, dim)
}

func (s *Service) WithQuotaForShopkeeper(ctx context.Context, shopkeeperID snowflake.ID, dim plandomain.Dimension, fn func(tx *gorm.DB, grant *trackerdomain.Grant) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ceiling, err := s.ceilingFor(ctx, tx, shopkeeperID, dim)
		if err != nil {
			return err
		}
		current, err := s.repo.SumForShopkeeper(ctx, tx, shopkeeperID, dim)
		if err != nil {
			return err
		}
		if current >= ceiling {
			return trackerdomain.ErrQuotaExceeded
		}

		grant := &trackerdomain.Grant{}
		if err := fn(tx, grant); err != nil {
			return err
		}
		if grant.TargetOrg() == 0 {
			return fmt.Errorf("shopkeeper-scoped grant must name a target organization")
		}
		tracker, err := s.repo.FindByOrgID(ctx, tx, grant.TargetOrg())
		if err != nil {
			return err
		}
		return s.applyGrant(ctx, tx, tracker, dim, grant)
	}, serializableTx)
	return s.classify(err, shopkeeperID, dim)
}

func (s *Service) Provision(ctx context.Context, tx *gorm.DB, shopkeeperID, orgID snowflake.ID) error {
	now := s.clock.Now()
	return s.repo.Insert(ctx, tx, &trackerdomain.PlanTracker{
		ID:           s.genID.Generate(),
		ShopkeeperID: shopkeeperID,
		OrgID:        orgID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *Service) Usage(ctx context.Context, orgID snowflake.ID) (*trackerdomain.PlanTracker, error) {
	return s.repo.FindByOrgID(ctx, s.db, orgID)
}

func (s *Service) ResetCounter(ctx context.Context, dim plandomain.Dimension) (int64, error) {
	if !dim.Valid() {
		return 0, plandomain.ErrUnknownDimension
	}
	rows, err := s.repo.BulkReset(ctx, s.db, dim)
	if err != nil {
		return 0, err
	}
	s.log.Info("counter reset",
		zap.String("dimension", string(dim)),
		zap.Int64("rows", rows),
	)
	return rows, nil
}

// ceilingFor resolves the plan ceiling through the owning shopkeeper's
// current plan.
func (s *Service) ceilingFor(ctx context.Context, tx *gorm.DB, shopkeeperID snowflake.ID, dim plandomain.Dimension) (int, error) {
	keeper, err := s.shopkeeperRepo.FindByID(ctx, tx, shopkeeperID)
	if err != nil {
		if errors.Is(err, shopkeeperdomain.ErrNotFound) {
			return 0, trackerdomain.ErrPlanNotFound
		}
		return 0, err
	}
	if keeper.CurrentPlanID == 0 {
		return 0, trackerdomain.ErrPlanNotFound
	}
	plan, err := s.planRepo.FindByID(ctx, tx, keeper.CurrentPlanID)
	if err != nil {
		if errors.Is(err, plandomain.ErrNotFound) {
			return 0, trackerdomain.ErrPlanNotFound
		}
		return 0, err
	}
	return plan.CeilingFor(dim)
}

// currentFor reads the counter being guarded. Organization counts are scoped
// to the shopkeeper as a whole, everything else to the single tracker row.
func (s *Service) currentFor(ctx context.Context, tx *gorm.DB, tracker *trackerdomain.PlanTracker, dim plandomain.Dimension) (int, error) {
	if dim == plandomain.DimOrganizations {
		return s.repo.SumForShopkeeper(ctx, tx, tracker.ShopkeeperID, dim)
	}
	return tracker.CountFor(dim)
}

// applyGrant charges the consumed units against the tracker row, bundling the
// API-call counter with every guarded dimension except itself.
func (s *Service) applyGrant(ctx context.Context, tx *gorm.DB, tracker *trackerdomain.PlanTracker, dim plandomain.Dimension, grant *trackerdomain.Grant) error {
	target := tracker
	if redirect := grant.TargetOrg(); redirect != 0 && redirect != tracker.OrgID {
		redirected, err := s.repo.FindByOrgID(ctx, tx, redirect)
		if err != nil {
			return err
		}
		target = redirected
	}
	dims := []plandomain.Dimension{dim}
	if dim != plandomain.DimAPICalls {
		dims = append(dims, plandomain.DimAPICalls)
	}
	return s.repo.Increment(ctx, tx, target.ID, dims, grant.Units())
}

func (s *Service) classify(err error, owner snowflake.ID, dim plandomain.Dimension) error {
	if err == nil {
		return nil
	}
	if db.IsSerializationErr(err) {
		s.log.Warn("guarded transaction lost serialization conflict",
			zap.Int64("owner_id", int64(owner)),
			zap.String("dimension", string(dim)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", trackerdomain.ErrTransientConflict, err)
	}
	return err
}
