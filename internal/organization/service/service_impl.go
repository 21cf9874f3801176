package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	orgdomain "github.com/shopstack/shopstack/internal/organization/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	shopkeeperdomain "github.com/shopstack/shopstack/internal/shopkeeper/domain"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"github.com/shopstack/shopstack/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const trialPeriodDays = 14

type ServiceParam struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           orgdomain.Repository
	SubUserRepo    subuserdomain.Repository
	ShopkeeperRepo shopkeeperdomain.Repository
	TrackerSvc     trackerdomain.Service
	TrackerRepo    trackerdomain.Repository
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID          *snowflake.Node
	clock          clock.Clock
	repo           orgdomain.Repository
	subUserRepo    subuserdomain.Repository
	shopkeeperRepo shopkeeperdomain.Repository
	trackerSvc     trackerdomain.Service
	trackerRepo    trackerdomain.Repository
}

func NewService(p ServiceParam) orgdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("organization.service"),

		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		subUserRepo:    p.SubUserRepo,
		shopkeeperRepo: p.ShopkeeperRepo,
		trackerSvc:     p.TrackerSvc,
		trackerRepo:    p.TrackerRepo,
	}
}

var serializableTx = &sql.TxOptions{Isolation: sql.LevelSerializable}

func (s *Service) Register(ctx context.Context, req orgdomain.CreateOrganizationRequest) (*orgdomain.Organization, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	org := &orgdomain.Organization{
		ID:           s.genID.Generate(),
		ShopkeeperID: req.ShopkeeperID,
		OrgName:      req.OrgName,
		OrgPhone:     req.OrgPhone,
		OrgEmail:     req.OrgEmail,
		OrgGST:       req.OrgGST,
		Address:      req.Address,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
		IsActive:     req.IsActive,
		IsEstimated:  req.IsEstimated,
		Metadata:     datatypes.JSONMap(req.Metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if org.Metadata == nil {
		org.Metadata = datatypes.JSONMap{}
	}

	var err error
	if req.IsActive {
		err = s.registerTrialOrg(ctx, org)
	} else {
		err = s.trackerSvc.WithQuotaForShopkeeper(ctx, req.ShopkeeperID, plandomain.DimOrganizations, func(tx *gorm.DB, grant *trackerdomain.Grant) error {
			if err := s.repo.Insert(ctx, tx, org); err != nil {
				return err
			}
			if err := s.trackerSvc.Provision(ctx, tx, req.ShopkeeperID, org.ID); err != nil {
				return err
			}
			grant.SetTargetOrg(org.ID)
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("organization registered",
		zap.Int64("org_id", int64(org.ID)),
		zap.Bool("is_active", org.IsActive),
	)
	return org, nil
}

// registerTrialOrg creates the shopkeeper's activated organization. No
// ceiling applies, but the counter row still records the unit and the trial
// window opens on the account.
func (s *Service) registerTrialOrg(ctx context.Context, org *orgdomain.Organization) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, org); err != nil {
			return err
		}
		if err := s.trackerSvc.Provision(ctx, tx, org.ShopkeeperID, org.ID); err != nil {
			return err
		}
		tracker, err := s.trackerRepo.FindByOrgID(ctx, tx, org.ID)
		if err != nil {
			return err
		}
		dims := []plandomain.Dimension{plandomain.DimOrganizations, plandomain.DimAPICalls}
		if err := s.trackerRepo.Increment(ctx, tx, tracker.ID, dims, 1); err != nil {
			return err
		}

		start := s.clock.Now()
		expiry := endOfDay(start.AddDate(0, 0, trialPeriodDays))
		return s.shopkeeperRepo.UpdateTrialWindow(ctx, tx, org.ShopkeeperID, start, expiry)
	}, serializableTx)
	return s.classify(err)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*orgdomain.Organization, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) ListByShopkeeper(ctx context.Context, shopkeeperID snowflake.ID) ([]orgdomain.Organization, error) {
	return s.repo.ListByShopkeeper(ctx, s.db, shopkeeperID)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req orgdomain.UpdateOrganizationRequest) (*orgdomain.Organization, error) {
	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if req.OrgName != "" {
		org.OrgName = req.OrgName
	}
	if req.OrgPhone != "" {
		org.OrgPhone = req.OrgPhone
	}
	if req.OrgEmail != "" {
		org.OrgEmail = req.OrgEmail
	}
	if req.OrgGST != "" {
		org.OrgGST = req.OrgGST
	}
	if req.Address != "" {
		org.Address = req.Address
	}
	if req.State != "" {
		org.State = req.State
	}
	if req.Country != "" {
		org.Country = req.Country
	}
	if req.Pincode != "" {
		org.Pincode = req.Pincode
	}
	if req.IsEstimated != nil {
		org.IsEstimated = *req.IsEstimated
	}
	org.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) Delete(ctx context.Context, shopkeeperID, orgID snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.repo.FindByID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if org.IsActive {
			return orgdomain.ErrDeleteActiveOrg
		}
		if err := s.repo.SoftDelete(ctx, tx, orgID); err != nil {
			return err
		}
		if _, err := s.subUserRepo.SoftDeleteByOrg(ctx, tx, shopkeeperID, orgID); err != nil {
			return err
		}

		// The deleted organization's counter row stays; release its unit and
		// charge the API call to the shopkeeper's active organization, as the
		// remaining caller-facing one.
		tracker, err := s.trackerRepo.FindByOrgID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if err := s.trackerRepo.Decrement(ctx, tx, tracker.ID, plandomain.DimOrganizations, 1); err != nil {
			return err
		}

		activeOrg, err := s.repo.FindActiveByShopkeeper(ctx, tx, shopkeeperID)
		if err != nil {
			return err
		}
		activeTracker, err := s.trackerRepo.FindByOrgID(ctx, tx, activeOrg.ID)
		if err != nil {
			return err
		}
		return s.trackerRepo.Increment(ctx, tx, activeTracker.ID, []plandomain.Dimension{plandomain.DimAPICalls}, 1)
	}, serializableTx)
	return s.classify(err)
}

func (s *Service) classify(err error) error {
	if err == nil {
		return nil
	}
	if db.IsSerializationErr(err) {
		return fmt.Errorf("%w: %v", trackerdomain.ErrTransientConflict, err)
	}
	return err
}

func validateCreate(req orgdomain.CreateOrganizationRequest) error {
	switch {
	case req.ShopkeeperID == 0:
		return fmt.Errorf("%w: shopkeeper id is required", orgdomain.ErrInvalidRequest)
	case req.OrgName == "":
		return fmt.Errorf("%w: org name is required", orgdomain.ErrInvalidRequest)
	case len(req.OrgPhone) < 7 || len(req.OrgPhone) > 15:
		return fmt.Errorf("%w: org phone must be 7-15 characters", orgdomain.ErrInvalidRequest)
	case req.Address == "" || req.State == "" || req.Country == "":
		return fmt.Errorf("%w: address, state and country are required", orgdomain.ErrInvalidRequest)
	case len(req.Pincode) < 4 || len(req.Pincode) > 10:
		return fmt.Errorf("%w: pincode must be 4-10 characters", orgdomain.ErrInvalidRequest)
	}
	return nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
