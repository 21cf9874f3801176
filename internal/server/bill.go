package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
)

type createBillRequest struct {
	SubUserID       string                `json:"sub_user_id"`
	BillType        string                `json:"bill_type"`
	CustomerName    string                `json:"customer_name"`
	CustomerPhone   string                `json:"customer_phone"`
	CustomerGST     string                `json:"customer_gst"`
	CustomerAddress string                `json:"customer_address"`
	InvoiceDate     time.Time             `json:"invoice_date"`
	ProductTotal    float64               `json:"product_total"`
	Discount        float64               `json:"discount"`
	SGST            float64               `json:"sgst"`
	CGST            float64               `json:"cgst"`
	FinalTotal      float64               `json:"final_total"`
	Items           []billdomain.LineItem `json:"items"`
}

func (s *Server) CreateBill(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	subUserID, hasSubUser, err := parseOptionalID(req.SubUserID)
	if err != nil {
		AbortWithError(c, newValidationError("sub_user_id", "invalid_sub_user_id", "invalid sub user id"))
		return
	}

	create := billdomain.CreateBillRequest{
		ShopkeeperID:    shopkeeperID,
		OrgID:           orgID,
		BillType:        billdomain.BillType(strings.TrimSpace(req.BillType)),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerGST:     strings.TrimSpace(req.CustomerGST),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		InvoiceDate:     req.InvoiceDate,
		ProductTotal:    req.ProductTotal,
		Discount:        req.Discount,
		SGST:            req.SGST,
		CGST:            req.CGST,
		FinalTotal:      req.FinalTotal,
		Items:           req.Items,
	}
	if hasSubUser {
		create.SubUserID = &subUserID
	}

	resp, err := s.billSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBills(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var query struct {
		InventoryID  string `form:"inventory_id"`
		InvoiceDate  string `form:"invoice_date"`
		CustomerName string `form:"customer_name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inventoryID, _, err := parseOptionalID(query.InventoryID)
	if err != nil {
		AbortWithError(c, newValidationError("inventory_id", "invalid_inventory_id", "invalid inventory id"))
		return
	}
	invoiceDate, err := parseOptionalDate(query.InvoiceDate)
	if err != nil {
		AbortWithError(c, newValidationError("invoice_date", "invalid_invoice_date", "invalid invoice date"))
		return
	}

	resp, err := s.billSvc.ListByOrg(c.Request.Context(), orgID, billdomain.ListFilter{
		InventoryID:  inventoryID,
		InvoiceDate:  invoiceDate,
		CustomerName: strings.TrimSpace(query.CustomerName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetBillByNumber returns every line row carrying the number; multi-item
// bills come back as one row per product.
func (s *Server) GetBillByNumber(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	billType := billdomain.BillType(strings.TrimSpace(c.Param("type")))
	if !billType.Valid() {
		AbortWithError(c, newValidationError("type", "invalid_bill_type", "invalid bill type"))
		return
	}

	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		AbortWithError(c, newValidationError("number", "invalid_number", "invalid number"))
		return
	}

	resp, err := s.billSvc.GetByNumber(c.Request.Context(), orgID, billType, number)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
