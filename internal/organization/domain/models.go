// Package domain defines the shop organizations a shopkeeper operates.
// Creating one is metered against the plan's organization ceiling and
// provisions the counter row every other quota check reads.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Organization struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopkeeperID snowflake.ID `gorm:"not null;index" json:"shopkeeper_id"`
	OrgName      string       `gorm:"type:text;not null" json:"org_name"`
	OrgPhone     string       `gorm:"type:text;not null" json:"org_phone"`
	OrgEmail     string       `gorm:"type:text" json:"org_email,omitempty"`
	OrgGST       string       `gorm:"column:org_gst;type:text" json:"org_gst,omitempty"`
	Address      string       `gorm:"type:text;not null" json:"address"`
	State        string       `gorm:"type:text;not null" json:"state"`
	Country      string       `gorm:"type:text;not null" json:"country"`
	Pincode      string       `gorm:"type:text;not null" json:"pincode"`
	// IsActive marks the trial organization; activating it opens the
	// shopkeeper's trial window instead of consuming quota.
	IsActive bool `gorm:"not null;default:false" json:"is_active"`
	// IsEstimated switches the organization's bills to the estimated
	// numbering line.
	IsEstimated bool              `gorm:"not null;default:false" json:"is_estimated"`
	IsDeleted   bool              `gorm:"not null;default:false" json:"is_deleted"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

var (
	ErrNotFound         = errors.New("organization not found")
	ErrInvalidRequest   = errors.New("invalid organization request")
	ErrDeleteActiveOrg  = errors.New("active organization cannot be deleted")
	ErrActiveOrgMissing = errors.New("shopkeeper has no active organization")
)
