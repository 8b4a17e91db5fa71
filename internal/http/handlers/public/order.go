package public

import (
	"strings"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求，收件信息缺省时取用户资料
type CheckoutRequest struct {
	DeliveryMethod string `json:"delivery_method"`
	PaymentMethod  string `json:"payment_method"`
	DiscountCode   string `json:"discount_code"`
	RecipientName  string `json:"recipient_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	Ward           string `json:"ward"`
	District       string `json:"district"`
	City           string `json:"city"`
	Notes          string `json:"notes"`
}

// DiscountPreviewRequest 折扣试算请求
type DiscountPreviewRequest struct {
	Code string `json:"code" binding:"required"`
}

// Checkout 购物车结算
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.Checkout(c.Request.Context(), service.CheckoutInput{
		UserID:         uid,
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		DiscountCode:   req.DiscountCode,
		RecipientName:  req.RecipientName,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		Ward:           req.Ward,
		District:       req.District,
		City:           req.City,
		Notes:          req.Notes,
	})
	if err != nil {
		requestLog(c).Warnw("order_checkout_rejected", "user_id", uid, "error", err)
		respondServiceError(c, err, cartErrorRules, discountErrorRules, orderErrorRules)
		return
	}
	response.Success(c, order)
}

// PreviewDiscount 按当前购物车试算折扣
func (h *Handler) PreviewDiscount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req DiscountPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	cart, err := h.CartService.GetCart(uid)
	if err != nil {
		respondServiceError(c, err, cartErrorRules)
		return
	}
	preview, err := h.DiscountService.Preview(strings.TrimSpace(req.Code), uid, cart.TotalPrice.Decimal)
	if err != nil {
		respondServiceError(c, err, discountErrorRules)
		return
	}
	response.Success(c, preview)
}

// ListOrders 我的订单
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	orders, total, err := h.OrderService.ListOrders(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(uid, orderID)
	if err != nil {
		respondServiceError(c, err, orderErrorRules)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消未支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.CancelOrder(c.Request.Context(), uid, orderID)
	if err != nil {
		respondServiceError(c, err, orderErrorRules)
		return
	}
	response.Success(c, order)
}
