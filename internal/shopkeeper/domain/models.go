// Package domain holds the account records quota resolution depends on.
// Credential and OTP flows live outside this service.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserType distinguishes the two sides of the ordering marketplace.
type UserType string

const (
	UserTypeShopkeeper UserType = "shopkeeper"
	UserTypeSupplier   UserType = "supplier"
)

// Shopkeeper is an account row. CurrentPlanID drives every quota ceiling
// for the account's organizations.
type Shopkeeper struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	FullName      string       `gorm:"type:text;not null" json:"full_name"`
	Phone         string       `gorm:"type:text;not null;uniqueIndex" json:"phone"`
	UserType      UserType     `gorm:"type:text;not null;default:'shopkeeper'" json:"user_type"`
	CurrentPlanID snowflake.ID `gorm:"not null;index" json:"current_plan_id"`
	TrialStartAt  *time.Time   `json:"trial_start_at,omitempty"`
	TrialExpiryAt *time.Time   `json:"trial_expiry_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Shopkeeper) TableName() string { return "shopkeepers" }

var ErrNotFound = errors.New("shopkeeper not found")
