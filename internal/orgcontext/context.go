package orgcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// OrgContextKey is the request context key for the active organization ID.
type OrgContextKey struct{}

// ShopkeeperContextKey is the request context key for the acting shopkeeper.
type ShopkeeperContextKey struct{}

// WithOrgID stores the org ID in the context.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, OrgContextKey{}, orgID)
}

// WithShopkeeperID stores the shopkeeper ID in the context.
func WithShopkeeperID(ctx context.Context, shopkeeperID snowflake.ID) context.Context {
	return context.WithValue(ctx, ShopkeeperContextKey{}, shopkeeperID)
}

// OrgIDFromContext returns the org ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, OrgContextKey{})
}

// ShopkeeperIDFromContext returns the shopkeeper ID from context, if set.
func ShopkeeperIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, ShopkeeperContextKey{})
}

func idFromContext(ctx context.Context, key any) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(key)
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
