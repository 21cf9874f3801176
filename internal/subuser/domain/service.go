package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateSubUserRequest struct {
	ShopkeeperID snowflake.ID `json:"shopkeeper_id"`
	OrgID        snowflake.ID `json:"org_id"`
	FullName     string       `json:"full_name"`
	Gender       string       `json:"gender"`
	DateOfBirth  *time.Time   `json:"date_of_birth,omitempty"`
	Address      string       `json:"address"`
	State        string       `json:"state"`
	Country      string       `json:"country"`
	Pincode      string       `json:"pincode"`
	Phone        string       `json:"phone"`
	PasswordHash string       `json:"password_hash"`
	Role         Role         `json:"role"`
}

type UpdateSubUserRequest struct {
	FullName string `json:"full_name"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

type Service interface {
	// Create adds a sub user under the plan's sub-user ceiling.
	Create(ctx context.Context, req CreateSubUserRequest) (*SubUser, error)

	GetByID(ctx context.Context, id snowflake.ID) (*SubUser, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]SubUser, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateSubUserRequest) (*SubUser, error)

	// Delete soft-deletes the sub user and releases its counter unit.
	Delete(ctx context.Context, orgID, id snowflake.ID) error
}
