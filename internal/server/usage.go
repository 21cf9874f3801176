package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUsage exposes the organization's raw counter row so clients can render
// "7 of 10 products used" without probing each create endpoint.
func (s *Server) GetUsage(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	resp, err := s.trackerSvc.Usage(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPlans(c *gin.Context) {
	resp, err := s.planSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
