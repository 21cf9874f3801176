package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/shopstack/shopstack/internal/report/domain"
)

func (s *Server) ViewSalesReport(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var query struct {
		StartDate   string `form:"start_date"`
		EndDate     string `form:"end_date"`
		ProductName string `form:"product_name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalDate(query.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start date"))
		return
	}
	endDate, err := parseOptionalDate(query.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end date"))
		return
	}

	resp, err := s.reportSvc.View(c.Request.Context(), orgID, reportdomain.ViewFilter{
		StartDate:   startDate,
		EndDate:     endDate,
		ProductName: strings.TrimSpace(query.ProductName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadSalesReport(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var query struct {
		StartDate string `form:"start_date"`
		EndDate   string `form:"end_date"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalDate(query.StartDate)
	if err != nil || startDate == nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start date"))
		return
	}
	endDate, err := parseOptionalDate(query.EndDate)
	if err != nil || endDate == nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end date"))
		return
	}

	resp, err := s.reportSvc.Download(c.Request.Context(), orgID, *startDate, *endDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
