// Package domain defines organization sub-staff accounts. Creation is
// metered against the plan's sub-user ceiling.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the sub-user's position inside the organization. At most one
// Manager exists per organization.
type Role string

const (
	RoleManager     Role = "Manager"
	RoleSalesPerson Role = "SalesPerson"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleSalesPerson
}

type SubUser struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopkeeperID snowflake.ID `gorm:"not null;index" json:"shopkeeper_id"`
	OrgID        snowflake.ID `gorm:"not null;index" json:"org_id"`
	FullName     string       `gorm:"type:text;not null" json:"full_name"`
	Gender       string       `gorm:"type:text" json:"gender"`
	DateOfBirth  *time.Time   `json:"date_of_birth,omitempty"`
	Address      string       `gorm:"type:text" json:"address"`
	State        string       `gorm:"type:text" json:"state"`
	Country      string       `gorm:"type:text" json:"country"`
	Pincode      string       `gorm:"type:text" json:"pincode"`
	Phone        string       `gorm:"type:text;not null" json:"phone"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	Role         Role         `gorm:"type:text;not null;default:'SalesPerson'" json:"role"`
	IsDeleted    bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SubUser) TableName() string { return "sub_users" }

var (
	ErrNotFound      = errors.New("sub user not found")
	ErrManagerExists = errors.New("organization already has a manager")
	ErrInvalidRole   = errors.New("invalid sub user role")
)
