package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/shopstack/shopstack/internal/organization/domain"
)

type createOrganizationRequest struct {
	OrgName     string         `json:"org_name"`
	OrgPhone    string         `json:"org_phone"`
	OrgEmail    string         `json:"org_email"`
	OrgGST      string         `json:"org_gst"`
	Address     string         `json:"address"`
	State       string         `json:"state"`
	Country     string         `json:"country"`
	Pincode     string         `json:"pincode"`
	IsActive    bool           `json:"is_active"`
	IsEstimated bool           `json:"is_estimated"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}

	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Register(c.Request.Context(), organizationdomain.CreateOrganizationRequest{
		ShopkeeperID: shopkeeperID,
		OrgName:      strings.TrimSpace(req.OrgName),
		OrgPhone:     strings.TrimSpace(req.OrgPhone),
		OrgEmail:     strings.TrimSpace(req.OrgEmail),
		OrgGST:       strings.TrimSpace(req.OrgGST),
		Address:      strings.TrimSpace(req.Address),
		State:        strings.TrimSpace(req.State),
		Country:      strings.TrimSpace(req.Country),
		Pincode:      strings.TrimSpace(req.Pincode),
		IsActive:     req.IsActive,
		IsEstimated:  req.IsEstimated,
		Metadata:     req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}

	resp, err := s.organizationSvc.ListByShopkeeper(c.Request.Context(), shopkeeperID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.organizationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req organizationdomain.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrganization(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.organizationSvc.Delete(c.Request.Context(), shopkeeperID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
