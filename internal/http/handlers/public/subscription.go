package public

import (
	"strings"
	"time"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

const subscriptionDateLayout = "2006-01-02"

// SubscriptionQuoteQuery 订阅报价查询
type SubscriptionQuoteQuery struct {
	BoxTypeID     uint   `form:"box_type_id" binding:"required"`
	StartDate     string `form:"start_date"`
	DurationWeeks int    `form:"duration_weeks" binding:"required"`
}

// CreateSubscriptionRequest 创建订阅请求
type CreateSubscriptionRequest struct {
	BoxTypeID      uint     `json:"box_type_id" binding:"required"`
	StartDate      string   `json:"start_date"`
	DurationWeeks  int      `json:"duration_weeks" binding:"required"`
	DeliveryDays   []string `json:"delivery_days"`
	DeliveryMethod string   `json:"delivery_method"`
	PaymentMethod  string   `json:"payment_method"`
	RecipientName  string   `json:"recipient_name"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	Notes          string   `json:"notes"`
}

// RenewSubscriptionRequest 续订请求
type RenewSubscriptionRequest struct {
	AdditionalWeeks int `json:"additional_weeks" binding:"required"`
}

// DeliveryPauseRequest 暂停/恢复某次配送
type DeliveryPauseRequest struct {
	Slot   int   `json:"slot" binding:"required"`
	Paused *bool `json:"paused" binding:"required"`
}

// QuoteSubscription 订阅报价
func (h *Handler) QuoteSubscription(c *gin.Context) {
	var query SubscriptionQuoteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	start, ok := parseSubscriptionDate(c, query.StartDate)
	if !ok {
		return
	}
	quote, err := h.SubscriptionService.Quote(query.BoxTypeID, start, query.DurationWeeks)
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules)
		return
	}
	response.Success(c, quote)
}

// CreateSubscription 创建周订阅并生成配套订单
func (h *Handler) CreateSubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	start, ok := parseSubscriptionDate(c, req.StartDate)
	if !ok {
		return
	}
	days := make([]time.Weekday, 0, len(req.DeliveryDays))
	for _, raw := range req.DeliveryDays {
		day, valid := service.ParseWeekday(raw)
		if !valid {
			respondError(c, response.CodeBadRequest, "error.subscription_days", nil)
			return
		}
		days = append(days, day)
	}
	result, err := h.SubscriptionService.Create(c.Request.Context(), service.CreateSubscriptionInput{
		UserID:         uid,
		BoxTypeID:      req.BoxTypeID,
		StartDate:      start,
		DurationWeeks:  req.DurationWeeks,
		DeliveryDays:   days,
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		RecipientName:  req.RecipientName,
		Phone:          req.Phone,
		Address:        req.Address,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules, orderErrorRules)
		return
	}
	response.Success(c, result)
}

// ListSubscriptions 我的订阅
func (h *Handler) ListSubscriptions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.SubscriptionService.ListByUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetSubscription 订阅详情（含配送排期）
func (h *Handler) GetSubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subscription, err := h.SubscriptionService.Get(uid, id)
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules)
		return
	}
	response.Success(c, subscription)
}

// RenewSubscription 续订
func (h *Handler) RenewSubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.SubscriptionService.Renew(c.Request.Context(), uid, id, req.AdditionalWeeks)
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules, orderErrorRules)
		return
	}
	response.Success(c, result)
}

// CancelSubscription 取消订阅
func (h *Handler) CancelSubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subscription, err := h.SubscriptionService.Cancel(uid, id)
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules)
		return
	}
	response.Success(c, subscription)
}

// SetDeliveryPaused 暂停或恢复某周的一次配送
func (h *Handler) SetDeliveryPaused(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}
	var req DeliveryPauseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Paused == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	schedule, err := h.SubscriptionService.SetDeliveryPaused(uid, id, scheduleID, req.Slot, *req.Paused)
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules)
		return
	}
	response.Success(c, schedule)
}

// parseSubscriptionDate 解析 YYYY-MM-DD，空值表示由服务端取下一个周一
func parseSubscriptionDate(c *gin.Context, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.ParseInLocation(subscriptionDateLayout, raw, time.UTC)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return time.Time{}, false
	}
	return parsed, true
}
