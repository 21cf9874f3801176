package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
)

type createSubUserRequest struct {
	FullName    string     `json:"full_name"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     string     `json:"address"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	Pincode     string     `json:"pincode"`
	Phone       string     `json:"phone"`
	// Hashed upstream by the auth gateway; the core never sees plaintext.
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

func (s *Server) CreateSubUser(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req createSubUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subUserSvc.Create(c.Request.Context(), subuserdomain.CreateSubUserRequest{
		ShopkeeperID: shopkeeperID,
		OrgID:        orgID,
		FullName:     strings.TrimSpace(req.FullName),
		Gender:       strings.TrimSpace(req.Gender),
		DateOfBirth:  req.DateOfBirth,
		Address:      strings.TrimSpace(req.Address),
		State:        strings.TrimSpace(req.State),
		Country:      strings.TrimSpace(req.Country),
		Pincode:      strings.TrimSpace(req.Pincode),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: req.PasswordHash,
		Role:         subuserdomain.Role(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubUsers(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	resp, err := s.subUserSvc.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.subUserSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSubUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req subuserdomain.UpdateSubUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subUserSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSubUser(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.subUserSvc.Delete(c.Request.Context(), orgID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
