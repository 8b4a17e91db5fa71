package public

import (
	"errors"

	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	BoxTypeID uint `json:"box_type_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CartQuantityRequest 修改数量请求（0 表示删除）
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse 购物车响应
type CartResponse struct {
	ID         uint               `json:"id,omitempty"`
	Items      []models.OrderItem `json:"items"`
	ItemCount  int                `json:"item_count"`
	TotalPrice models.Money       `json:"total_price"`
}

func newCartResponse(cart *models.Order) CartResponse {
	if cart == nil {
		return CartResponse{Items: []models.OrderItem{}}
	}
	items := cart.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return CartResponse{
		ID:         cart.ID,
		Items:      items,
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice,
	}
}

// GetCart 获取购物车，空购物车返回空列表
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.GetCart(uid)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			response.Success(c, newCartResponse(nil))
			return
		}
		respondServiceError(c, err, cartErrorRules)
		return
	}
	response.Success(c, newCartResponse(cart))
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	cart, err := h.CartService.AddItem(c.Request.Context(), uid, req.BoxTypeID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, cartErrorRules)
		return
	}
	response.Success(c, newCartResponse(cart))
}

// UpdateCartItem 修改购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	cart, err := h.CartService.UpdateQuantity(c.Request.Context(), uid, itemID, *req.Quantity)
	if err != nil {
		respondServiceError(c, err, cartErrorRules)
		return
	}
	response.Success(c, newCartResponse(cart))
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	cart, err := h.CartService.RemoveItem(c.Request.Context(), uid, itemID)
	if err != nil {
		respondServiceError(c, err, cartErrorRules)
		return
	}
	response.Success(c, newCartResponse(cart))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.ClearCart(c.Request.Context(), uid); err != nil {
		respondServiceError(c, err, cartErrorRules)
		return
	}
	response.Success(c, newCartResponse(nil))
}
