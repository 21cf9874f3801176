package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"github.com/shopstack/shopstack/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        subuserdomain.Repository
	TrackerSvc  trackerdomain.Service
	TrackerRepo trackerdomain.Repository
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	repo        subuserdomain.Repository
	trackerSvc  trackerdomain.Service
	trackerRepo trackerdomain.Repository
}

func NewService(p ServiceParam) subuserdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("subuser.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		trackerSvc:  p.TrackerSvc,
		trackerRepo: p.TrackerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req subuserdomain.CreateSubUserRequest) (*subuserdomain.SubUser, error) {
	role := req.Role
	if role == "" {
		role = subuserdomain.RoleSalesPerson
	}
	if !role.Valid() {
		return nil, subuserdomain.ErrInvalidRole
	}
	if req.FullName == "" || req.Phone == "" || req.PasswordHash == "" {
		return nil, fmt.Errorf("full name, phone and password hash are required")
	}

	now := s.clock.Now()
	subUser := &subuserdomain.SubUser{
		ID:           s.genID.Generate(),
		ShopkeeperID: req.ShopkeeperID,
		OrgID:        req.OrgID,
		FullName:     req.FullName,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
		Phone:        req.Phone,
		PasswordHash: req.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.trackerSvc.WithQuota(ctx, req.OrgID, plandomain.DimSubUsers, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
		if role == subuserdomain.RoleManager {
			exists, err := s.repo.ManagerExists(ctx, tx, req.ShopkeeperID, req.OrgID)
			if err != nil {
				return err
			}
			if exists {
				return subuserdomain.ErrManagerExists
			}
		}
		return s.repo.Insert(ctx, tx, subUser)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sub user created",
		zap.Int64("org_id", int64(req.OrgID)),
		zap.String("role", string(role)),
	)
	return subUser, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*subuserdomain.SubUser, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]subuserdomain.SubUser, error) {
	return s.repo.ListByOrg(ctx, s.db, orgID)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req subuserdomain.UpdateSubUserRequest) (*subuserdomain.SubUser, error) {
	subUser, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != "" {
		subUser.FullName = req.FullName
	}
	if req.Gender != "" {
		subUser.Gender = req.Gender
	}
	if req.Address != "" {
		subUser.Address = req.Address
	}
	if req.State != "" {
		subUser.State = req.State
	}
	if req.Country != "" {
		subUser.Country = req.Country
	}
	if req.Pincode != "" {
		subUser.Pincode = req.Pincode
	}
	if req.Phone != "" {
		subUser.Phone = req.Phone
	}
	subUser.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, subUser); err != nil {
		return nil, err
	}
	return subUser, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		tracker, err := s.trackerRepo.FindByOrgID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if err := s.trackerRepo.Decrement(ctx, tx, tracker.ID, plandomain.DimSubUsers, 1); err != nil {
			return err
		}
		return s.trackerRepo.Increment(ctx, tx, tracker.ID, []plandomain.Dimension{plandomain.DimAPICalls}, 1)
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		if db.IsSerializationErr(err) {
			return fmt.Errorf("%w: %v", trackerdomain.ErrTransientConflict, err)
		}
		return err
	}
	return nil
}
