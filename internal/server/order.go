package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
)

type makeOrderRequest struct {
	SupplierID string                  `json:"supplier_id"`
	SubUserID  string                  `json:"sub_user_id"`
	UserType   string                  `json:"user_type"`
	TotalAmt   float64                 `json:"total_amt"`
	Items      []orderdomain.OrderLine `json:"items"`
}

type orderResponse struct {
	Order orderdomain.Order       `json:"order"`
	Items []orderdomain.OrderItem `json:"items,omitempty"`
}

func (s *Server) MakeOrder(c *gin.Context) {
	shopkeeperID, ok := requireShopkeeperID(c)
	if !ok {
		return
	}
	orgID, ok := requireOrgID(c)
	if !ok {
		return
	}

	var req makeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	supplierID, hasSupplier, err := parseOptionalID(req.SupplierID)
	if err != nil || !hasSupplier {
		AbortWithError(c, newValidationError("supplier_id", "invalid_supplier_id", "invalid supplier id"))
		return
	}
	subUserID, hasSubUser, err := parseOptionalID(req.SubUserID)
	if err != nil {
		AbortWithError(c, newValidationError("sub_user_id", "invalid_sub_user_id", "invalid sub user id"))
		return
	}

	create := orderdomain.MakeOrderRequest{
		ShopkeeperID: shopkeeperID,
		SupplierID:   supplierID,
		OrgID:        orgID,
		UserType:     strings.TrimSpace(req.UserType),
		TotalAmt:     req.TotalAmt,
		Items:        req.Items,
	}
	if hasSubUser {
		create.SubUserID = &subUserID
	}

	order, items, err := s.orderSvc.Make(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse{Order: order, Items: items}})
}

// ListOrders serves both sides of the marketplace: suppliers pass
// supplier_id and see the orders placed with them, shopkeepers see their
// organization's orders.
func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		SupplierID        string  `form:"supplier_id"`
		Status            string  `form:"status"`
		NotPending        string  `form:"not_pending"`
		OrderDate         string  `form:"order_date"`
		Month             int     `form:"month"`
		Year              int     `form:"year"`
		SupplierDelivered string  `form:"supplier_delivered"`
		MinAmt            float64 `form:"min_amt"`
		MaxAmt            float64 `form:"max_amt"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	notPending, err := parseOptionalBool(query.NotPending)
	if err != nil {
		AbortWithError(c, newValidationError("not_pending", "invalid_not_pending", "invalid not_pending"))
		return
	}
	orderDate, err := parseOptionalDate(query.OrderDate)
	if err != nil {
		AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order date"))
		return
	}
	supplierDelivered, err := parseOptionalBool(query.SupplierDelivered)
	if err != nil {
		AbortWithError(c, newValidationError("supplier_delivered", "invalid_supplier_delivered", "invalid supplier_delivered"))
		return
	}

	filter := orderdomain.ListFilter{
		ApprovalStatus:    orderdomain.ApprovalStatus(strings.TrimSpace(query.Status)),
		OrderDate:         orderDate,
		Month:             time.Month(query.Month),
		Year:              query.Year,
		SupplierDelivered: supplierDelivered,
		MinAmt:            query.MinAmt,
		MaxAmt:            query.MaxAmt,
	}
	if notPending != nil {
		filter.NotPending = *notPending
	}

	supplierID, hasSupplier, err := parseOptionalID(query.SupplierID)
	if err != nil {
		AbortWithError(c, newValidationError("supplier_id", "invalid_supplier_id", "invalid supplier id"))
		return
	}

	var orders []orderdomain.Order
	if hasSupplier {
		orders, err = s.orderSvc.ListBySupplier(c.Request.Context(), supplierID, filter)
	} else {
		orgID, ok := requireOrgID(c)
		if !ok {
			return
		}
		orders, err = s.orderSvc.ListByOrg(c.Request.Context(), orgID, filter)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, items, err := s.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse{Order: order, Items: items}})
}

type decideOrderRequest struct {
	Status string `json:"status"`
}

func (s *Server) DecideOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req decideOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.Decide(c.Request.Context(), id, orderdomain.ApprovalStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse{Order: order}})
}

type confirmDeliveryRequest struct {
	Side string `json:"side"`
}

func (s *Server) ConfirmOrderDelivery(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req confirmDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.MarkDelivered(c.Request.Context(), id, orderdomain.DeliverySide(strings.TrimSpace(req.Side)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse{Order: order}})
}

func (s *Server) UpdateOrderBillTotals(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req orderdomain.BillTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.orderSvc.UpdateBillTotals(c.Request.Context(), id, req); err != nil {
		AbortWithError(c, err)
		return
	}

	order, items, err := s.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse{Order: order, Items: items}})
}
