package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectOrganization = "organization"
	ObjectInventory    = "inventory"
	ObjectBill         = "bill"
	ObjectOrder        = "order"
	ObjectSubUser      = "sub_user"
	ObjectReport       = "report"
	ObjectPlan         = "plan"
)

const (
	ActionOrganizationView   = "organization.view"
	ActionOrganizationCreate = "organization.create"
	ActionOrganizationUpdate = "organization.update"
	ActionOrganizationDelete = "organization.delete"

	ActionInventoryView   = "inventory.view"
	ActionInventoryCreate = "inventory.create"
	ActionInventoryUpdate = "inventory.update"
	ActionInventoryDelete = "inventory.delete"
	ActionInventoryScan   = "inventory.scan"

	ActionBillView   = "bill.view"
	ActionBillCreate = "bill.create"

	ActionOrderView    = "order.view"
	ActionOrderMake    = "order.make"
	ActionOrderDecide  = "order.decide"
	ActionOrderDeliver = "order.deliver"
	ActionOrderUpdate  = "order.update"
	ActionOrderExpire  = "order.expire"

	ActionSubUserView   = "sub_user.view"
	ActionSubUserCreate = "sub_user.create"
	ActionSubUserUpdate = "sub_user.update"
	ActionSubUserDelete = "sub_user.delete"

	ActionReportView     = "report.view"
	ActionReportDownload = "report.download"

	ActionPlanView  = "plan.view"
	ActionPlanReset = "plan.reset"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, orgID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, orgID)
	if err != nil {
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("actor", actor),
			zap.String("org_id", orgID),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, orgID string) (string, string, error) {
	if actor == "system" {
		return actor, "role:system", nil
	}
	if rest, ok := strings.CutPrefix(actor, "shopkeeper:"); ok {
		if _, err := parseID(rest); err != nil {
			return "", "", ErrInvalidActor
		}
		return actor, "role:shopkeeper", nil
	}
	if rest, ok := strings.CutPrefix(actor, "supplier:"); ok {
		if _, err := parseID(rest); err != nil {
			return "", "", ErrInvalidActor
		}
		return actor, "role:supplier", nil
	}
	if rest, ok := strings.CutPrefix(actor, "subuser:"); ok {
		subUserID, err := parseID(rest)
		if err != nil {
			return "", "", ErrInvalidActor
		}
		parsedOrgID, err := parseID(orgID)
		if err != nil {
			return "", "", ErrInvalidOrganization
		}
		role, err := s.roleForSubUser(ctx, parsedOrgID, subUserID)
		if err != nil {
			return "", "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, ErrInvalidActor
	}
	return id, nil
}

func (s *ServiceImpl) roleForSubUser(ctx context.Context, orgID snowflake.ID, subUserID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM sub_users
		 WHERE org_id = ? AND id = ? AND is_deleted = ?
		 LIMIT 1`,
		orgID,
		subUserID,
		false,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Shopkeepers own the organization side.
		{"role:shopkeeper", ObjectOrganization, ActionOrganizationView},
		{"role:shopkeeper", ObjectOrganization, ActionOrganizationCreate},
		{"role:shopkeeper", ObjectOrganization, ActionOrganizationUpdate},
		{"role:shopkeeper", ObjectOrganization, ActionOrganizationDelete},
		{"role:shopkeeper", ObjectInventory, ActionInventoryView},
		{"role:shopkeeper", ObjectInventory, ActionInventoryCreate},
		{"role:shopkeeper", ObjectInventory, ActionInventoryUpdate},
		{"role:shopkeeper", ObjectInventory, ActionInventoryDelete},
		{"role:shopkeeper", ObjectInventory, ActionInventoryScan},
		{"role:shopkeeper", ObjectBill, ActionBillView},
		{"role:shopkeeper", ObjectBill, ActionBillCreate},
		{"role:shopkeeper", ObjectOrder, ActionOrderView},
		{"role:shopkeeper", ObjectOrder, ActionOrderMake},
		{"role:shopkeeper", ObjectOrder, ActionOrderDeliver},
		{"role:shopkeeper", ObjectSubUser, ActionSubUserView},
		{"role:shopkeeper", ObjectSubUser, ActionSubUserCreate},
		{"role:shopkeeper", ObjectSubUser, ActionSubUserUpdate},
		{"role:shopkeeper", ObjectSubUser, ActionSubUserDelete},
		{"role:shopkeeper", ObjectReport, ActionReportView},
		{"role:shopkeeper", ObjectReport, ActionReportDownload},
		{"role:shopkeeper", ObjectPlan, ActionPlanView},

		// Suppliers act on orders addressed to them.
		{"role:supplier", ObjectOrder, ActionOrderView},
		{"role:supplier", ObjectOrder, ActionOrderDecide},
		{"role:supplier", ObjectOrder, ActionOrderDeliver},
		{"role:supplier", ObjectOrder, ActionOrderUpdate},

		// A Manager runs day-to-day operations but never the organization itself.
		{"role:manager", ObjectInventory, ActionInventoryView},
		{"role:manager", ObjectInventory, ActionInventoryCreate},
		{"role:manager", ObjectInventory, ActionInventoryUpdate},
		{"role:manager", ObjectInventory, ActionInventoryScan},
		{"role:manager", ObjectBill, ActionBillView},
		{"role:manager", ObjectBill, ActionBillCreate},
		{"role:manager", ObjectOrder, ActionOrderView},
		{"role:manager", ObjectOrder, ActionOrderMake},
		{"role:manager", ObjectOrder, ActionOrderDeliver},
		{"role:manager", ObjectSubUser, ActionSubUserView},
		{"role:manager", ObjectReport, ActionReportView},
		{"role:manager", ObjectReport, ActionReportDownload},

		// Sales staff sell and scan.
		{"role:salesperson", ObjectInventory, ActionInventoryView},
		{"role:salesperson", ObjectInventory, ActionInventoryScan},
		{"role:salesperson", ObjectBill, ActionBillView},
		{"role:salesperson", ObjectBill, ActionBillCreate},
		{"role:salesperson", ObjectReport, ActionReportView},

		// The sweeper and other automated processes.
		{"role:system", ObjectOrder, ActionOrderExpire},
		{"role:system", ObjectPlan, ActionPlanReset},
		{"role:system", ObjectPlan, ActionPlanView},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
