package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateOrganizationRequest struct {
	ShopkeeperID snowflake.ID   `json:"shopkeeper_id"`
	OrgName      string         `json:"org_name"`
	OrgPhone     string         `json:"org_phone"`
	OrgEmail     string         `json:"org_email"`
	OrgGST       string         `json:"org_gst"`
	Address      string         `json:"address"`
	State        string         `json:"state"`
	Country      string         `json:"country"`
	Pincode      string         `json:"pincode"`
	IsActive     bool           `json:"is_active"`
	IsEstimated  bool           `json:"is_estimated"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type UpdateOrganizationRequest struct {
	OrgName     string `json:"org_name"`
	OrgPhone    string `json:"org_phone"`
	OrgEmail    string `json:"org_email"`
	OrgGST      string `json:"org_gst"`
	Address     string `json:"address"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Pincode     string `json:"pincode"`
	IsEstimated *bool  `json:"is_estimated,omitempty"`
}

type Service interface {
	// Register creates an organization and its counter row in one
	// transaction. Trial (active) organizations bypass the ceiling and open
	// the shopkeeper's trial window; everything else consumes one
	// organization unit.
	Register(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)

	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	ListByShopkeeper(ctx context.Context, shopkeeperID snowflake.ID) ([]Organization, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateOrganizationRequest) (*Organization, error)

	// Delete soft-deletes an inactive organization, cascades to its sub
	// users, and releases its counter unit.
	Delete(ctx context.Context, shopkeeperID, orgID snowflake.ID) error
}
