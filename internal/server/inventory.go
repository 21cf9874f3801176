package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	"github.com/shopstack/shopstack/pkg/db/pagination"
)

type createProductRequest struct {
	SubUserID          string  `json:"sub_user_id"`
	ProductCategory    string  `json:"product_category"`
	ProductBrand       string  `json:"product_brand"`
	ProductModel       string  `json:"product_model"`
	ProductName        string  `json:"product_name"`
	ProductDescription string  `json:"product_description"`
	ProductColor       string  `json:"product_color"`
	ProductPrice       float64 `json:"product_price"`
	HSNCode            string  `json:"hsn_code"`
	Barcode            string  `json:"barcode"`
	SubCategory        string  `json:"sub_category"`
	Quantity           int64   `json:"quantity"`
	LowStockQuantity   int64   `json:"low_stock_quantity"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	subUserID, hasSubUser, err := parseOptionalID(req.SubUserID)
	if err != nil {
		AbortWithError(c, newValidationError("sub_user_id", "invalid_sub_user_id", "invalid sub user id"))
		return
	}

	create := inventorydomain.CreateProductRequest{
		ShopkeeperID:       shopkeeperID,
		OrgID:              orgID,
		ProductCategory:    strings.TrimSpace(req.ProductCategory),
		ProductBrand:       strings.TrimSpace(req.ProductBrand),
		ProductModel:       strings.TrimSpace(req.ProductModel),
		ProductName:        strings.TrimSpace(req.ProductName),
		ProductDescription: strings.TrimSpace(req.ProductDescription),
		ProductColor:       strings.TrimSpace(req.ProductColor),
		ProductPrice:       req.ProductPrice,
		HSNCode:            strings.TrimSpace(req.HSNCode),
		Barcode:            strings.TrimSpace(req.Barcode),
		SubCategory:        strings.TrimSpace(req.SubCategory),
		Quantity:           req.Quantity,
		LowStockQuantity:   req.LowStockQuantity,
	}
	if hasSubUser {
		create.SubUserID = &subUserID
	}

	resp, err := s.inventorySvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var query struct {
		Categories string `form:"categories"`
		Brands     string `form:"brands"`
		Colors     string `form:"colors"`
		Search     string `form:"search"`
		LowStock   string `form:"low_stock"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lowStock, err := parseOptionalBool(query.LowStock)
	if err != nil {
		AbortWithError(c, newValidationError("low_stock", "invalid_low_stock", "invalid low_stock"))
		return
	}

	filter := inventorydomain.ListFilter{
		Categories:  splitCSV(query.Categories),
		Brands:      splitCSV(query.Brands),
		Colors:      splitCSV(query.Colors),
		SearchQuery: strings.TrimSpace(query.Search),
	}
	if lowStock != nil {
		filter.LowStock = *lowStock
	}

	products, pageInfo, err := s.inventorySvc.List(c.Request.Context(), orgID, filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "page_info": pageInfo})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.inventorySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByBarcode(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	barcode := strings.TrimSpace(c.Param("barcode"))
	if barcode == "" {
		AbortWithError(c, newValidationError("barcode", "invalid_barcode", "invalid barcode"))
		return
	}

	resp, err := s.inventorySvc.GetByBarcode(c.Request.Context(), orgID, barcode)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ScanBarcode resolves the product and charges one scan unit in the same
// request. The lookup runs first so a miss never burns quota.
func (s *Server) ScanBarcode(c *gin.Context) {
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	barcode := strings.TrimSpace(c.Param("barcode"))
	if barcode == "" {
		AbortWithError(c, newValidationError("barcode", "invalid_barcode", "invalid barcode"))
		return
	}

	resp, err := s.inventorySvc.GetByBarcode(c.Request.Context(), orgID, barcode)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.inventorySvc.RecordBarcodeScan(c.Request.Context(), orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inventorydomain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inventorySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.inventorySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
