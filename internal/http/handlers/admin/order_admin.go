package admin

import (
	"strings"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// AdminOrderListItem 管理端订单列表返回
type AdminOrderListItem struct {
	models.Order
	UserEmail       string `json:"user_email,omitempty"`
	UserDisplayName string `json:"user_display_name,omitempty"`
}

// BatchStatusRequest 批量更新订单状态请求
type BatchStatusRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// AdminListOrders 管理端订单列表（不含购物车）
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	orders, total, err := h.OrderService.ListAdmin(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      handlershared.QueryUint(c, "user_id"),
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	userMap := map[uint]models.User{}
	userIDs := lo.Uniq(lo.FilterMap(orders, func(order models.Order, _ int) (uint, bool) {
		return order.UserID, order.UserID != 0
	}))
	if len(userIDs) > 0 {
		users, err := h.UserRepo.ListByIDs(userIDs)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		userMap = lo.KeyBy(users, func(user models.User) uint { return user.ID })
	}

	items := make([]AdminOrderListItem, 0, len(orders))
	for _, order := range orders {
		user := userMap[order.UserID]
		items = append(items, AdminOrderListItem{
			Order:           order,
			UserEmail:       user.Email,
			UserDisplayName: user.DisplayName,
		})
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForAdmin(orderID)
	if err != nil {
		respondServiceError(c, err, orderErrorRules)
		return
	}
	detail := AdminOrderListItem{Order: *order}
	if order.UserID != 0 {
		user, err := h.UserRepo.GetByID(order.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		if user != nil {
			detail.UserEmail = user.Email
			detail.UserDisplayName = user.DisplayName
		}
	}
	response.Success(c, detail)
}

// AdminBatchUpdateOrderStatus 批量流转订单状态，任一订单不满足规则则整体回滚
func (h *Handler) AdminBatchUpdateOrderStatus(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	var req BatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	orders, err := h.OrderService.BatchUpdateStatus(c.Request.Context(), req.OrderIDs, req.Status, actorID)
	if err != nil {
		requestLog(c).Warnw("admin_order_batch_status_rejected",
			"order_ids", req.OrderIDs,
			"target_status", req.Status,
			"error", err,
		)
		respondServiceError(c, err, orderErrorRules)
		return
	}
	response.Success(c, orders)
}

// AdminMarkOrderPaid 确认线下收款
func (h *Handler) AdminMarkOrderPaid(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.MarkPaid(c.Request.Context(), orderID, actorID)
	if err != nil {
		respondServiceError(c, err, orderErrorRules)
		return
	}
	response.Success(c, order)
}
