package authorization

import (
	"context"
	"errors"
)

var (
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrForbidden           = errors.New("forbidden")
)

// Service answers "may this actor perform this action on this object inside
// this organization". Actors are "system", "shopkeeper:<id>",
// "supplier:<id>" or "subuser:<id>"; sub-users carry the role stored on
// their row.
type Service interface {
	Authorize(ctx context.Context, actor string, orgID string, object string, action string) error
}
