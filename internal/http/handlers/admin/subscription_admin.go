package admin

import (
	"strings"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// DeliverScheduleRequest 标记配送送达请求
type DeliverScheduleRequest struct {
	Slot int `json:"slot" binding:"required"`
}

// GetAdminSubscriptions 订阅列表
func (h *Handler) GetAdminSubscriptions(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.SubscriptionService.ListAdmin(repository.SubscriptionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    handlershared.QueryUint(c, "user_id"),
		BoxTypeID: handlershared.QueryUint(c, "box_type_id"),
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// MarkScheduleDelivered 标记某周某次配送已送达
func (h *Handler) MarkScheduleDelivered(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}
	var req DeliverScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	schedule, err := h.SubscriptionService.MarkDelivered(subscriptionID, scheduleID, req.Slot, actorID)
	if err != nil {
		respondServiceError(c, err, subscriptionErrorRules)
		return
	}
	response.Success(c, schedule)
}
