package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

const payosSignatureHeader = "X-Signature"

// maxWebhookBodyBytes PayOS 回调体上限
const maxWebhookBodyBytes = 64 << 10

// PaymentLinkRequest 创建支付链接请求
type PaymentLinkRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreatePaymentLink 为订单创建（或复用）PayOS 支付链接
func (h *Handler) CreatePaymentLink(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req PaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.PaymentService.CreatePaymentLink(c.Request.Context(), uid, req.OrderID)
	if err != nil {
		respondServiceError(c, err, paymentErrorRules, orderErrorRules)
		return
	}
	response.Success(c, result)
}

// GetPaymentLink 查询订单支付链接在网关侧的状态
func (h *Handler) GetPaymentLink(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	info, err := h.PaymentService.QueryPaymentLink(c.Request.Context(), uid, orderID)
	if err != nil {
		respondServiceError(c, err, paymentErrorRules, orderErrorRules)
		return
	}
	response.Success(c, info)
}

// PayOSWebhook PayOS 支付回调
// 验签或载荷错误返回 400；忽略、重复、订单不存在返回 200 避免网关重试；其余错误返回 500 由网关重试。
func (h *Handler) PayOSWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Warnw("payos_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "body unreadable"})
		return
	}
	log.Infow("payos_webhook_received", "client_ip", c.ClientIP(), "body_size", len(body))

	result, err := h.PaymentService.HandleWebhook(c.Request.Context(), body, strings.TrimSpace(c.GetHeader(payosSignatureHeader)))
	if err != nil {
		status, message := webhookFailureStatus(err)
		if status == http.StatusOK {
			log.Warnw("payos_webhook_acknowledged_without_order", "error", err)
			c.JSON(http.StatusOK, gin.H{"success": true, "ignored": true})
			return
		}
		log.Warnw("payos_webhook_handle_failed", "status", status, "error", err)
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"order_id":  result.OrderID,
		"status":    result.Status,
		"changed":   result.Changed,
		"duplicate": result.Duplicate,
		"ignored":   result.Ignored,
	})
}

func webhookFailureStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrWebhookSignatureInvalid):
		return http.StatusBadRequest, "invalid signature"
	case errors.Is(err, service.ErrWebhookPayloadInvalid):
		return http.StatusBadRequest, "invalid payload"
	case errors.Is(err, service.ErrWebhookAmountMismatch):
		return http.StatusBadRequest, "amount mismatch"
	case errors.Is(err, service.ErrWebhookOrderNotFound):
		return http.StatusOK, ""
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
