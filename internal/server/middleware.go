package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopstack/shopstack/internal/authorization"
	"github.com/shopstack/shopstack/internal/orgcontext"
)

const (
	headerOrgID        = "X-Org-Id"
	headerShopkeeperID = "X-Shopkeeper-Id"
	headerActor        = "X-Actor"
)

// OrgContext copies the tenant headers into the request context so services
// and repositories never touch gin directly. The upstream gateway has
// already authenticated the caller; these headers are its claims.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := strings.TrimSpace(c.GetHeader(headerOrgID)); raw != "" {
			orgID, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id"))
				return
			}
			ctx = orgcontext.WithOrgID(ctx, orgID)
		}

		if raw := strings.TrimSpace(c.GetHeader(headerShopkeeperID)); raw != "" {
			shopkeeperID, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("shopkeeper_id", "invalid_shopkeeper_id", "invalid shopkeeper id"))
				return
			}
			ctx = orgcontext.WithShopkeeperID(ctx, shopkeeperID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authorizeOrgAction gates a route on the actor's role within the active
// organization. The actor string carries its own type prefix
// (shopkeeper:<id>, supplier:<id>, subuser:<id>, system).
func (s *Server) authorizeOrgAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(headerActor))
		if actor == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, authorization.ErrInvalidOrganization)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), actor, orgID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}

func requireOrgID(c *gin.Context) (snowflake.ID, bool) {
	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, newValidationError("org_id", "missing_org_id", "org id header is required"))
		return 0, false
	}
	return orgID, true
}

func requireShopkeeperID(c *gin.Context) (snowflake.ID, bool) {
	shopkeeperID, ok := orgcontext.ShopkeeperIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, newValidationError("shopkeeper_id", "missing_shopkeeper_id", "shopkeeper id header is required"))
		return 0, false
	}
	return shopkeeperID, true
}
