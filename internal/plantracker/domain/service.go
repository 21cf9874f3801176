package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	"gorm.io/gorm"
)

// Grant records how many units the protected write actually consumed. The
// guard increments the counter by the recorded total after the write
// succeeds; a write that never calls Consume is charged one unit.
type Grant struct {
	units       int
	targetOrgID snowflake.ID
}

// Consume adds n units to the grant. Writes that produce several countable
// rows (one bill line each, for example) call it once per row.
func (g *Grant) Consume(n int) {
	if n > 0 {
		g.units += n
	}
}

// Units reports the consumed total, defaulting to a single unit.
func (g *Grant) Units() int {
	if g.units <= 0 {
		return 1
	}
	return g.units
}

// SetTargetOrg redirects the increment to another organization's tracker
// row. Organization creation uses it: the quota check runs against the
// shopkeeper's existing rows while the increment lands on the row the write
// just provisioned.
func (g *Grant) SetTargetOrg(orgID snowflake.ID) {
	g.targetOrgID = orgID
}

// TargetOrg returns the redirected organization ID, or zero when the guard
// should increment the row it checked.
func (g *Grant) TargetOrg() snowflake.ID {
	return g.targetOrgID
}

// Service guards writes with plan quota enforcement. The check, the write
// and the counter increment run inside one SERIALIZABLE transaction so the
// three steps cannot be split or interleaved.
type Service interface {
	// CheckQuota reports whether one more unit of the dimension fits under
	// the organization owner's plan ceiling. Read-only; the guarded variants
	// re-check inside their transaction.
	CheckQuota(ctx context.Context, orgID snowflake.ID, dim plandomain.Dimension) error

	// WithQuota runs fn inside a SERIALIZABLE transaction after verifying
	// the organization's counter is below the plan ceiling. When fn returns
	// nil the counter and the API-call counter are incremented by the units
	// recorded on the grant. Any error from fn rolls everything back.
	WithQuota(ctx context.Context, orgID snowflake.ID, dim plandomain.Dimension, fn func(tx *gorm.DB, grant *Grant) error) error

	// WithQuotaForShopkeeper is WithQuota checked against the sum of the
	// dimension across all of the shopkeeper's tracker rows. Used for
	// dimensions scoped to the account rather than one organization.
	WithQuotaForShopkeeper(ctx context.Context, shopkeeperID snowflake.ID, dim plandomain.Dimension, fn func(tx *gorm.DB, grant *Grant) error) error

	// Provision creates the tracker row for a freshly created organization
	// on the caller's transaction handle.
	Provision(ctx context.Context, tx *gorm.DB, shopkeeperID, orgID snowflake.ID) error

	// Usage returns the tracker row for an organization.
	Usage(ctx context.Context, orgID snowflake.ID) (*PlanTracker, error)

	// ResetCounter zeroes one counter across all tracker rows, returning the
	// number of rows updated. The sweeper calls it on calendar boundaries.
	ResetCounter(ctx context.Context, dim plandomain.Dimension) (int64, error)
}
