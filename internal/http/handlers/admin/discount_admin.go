package admin

import (
	"strings"
	"time"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/repository"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DiscountRequest 创建/更新折扣码请求
type DiscountRequest struct {
	Code         string          `json:"code" binding:"required"`
	Description  string          `json:"description"`
	Value        decimal.Decimal `json:"value"`
	IsPercentage bool            `json:"is_percentage"`
	IsActive     bool            `json:"is_active"`
	StartDate    time.Time       `json:"start_date" binding:"required"`
	EndDate      time.Time       `json:"end_date" binding:"required"`
}

func (r DiscountRequest) toInput() service.DiscountInput {
	return service.DiscountInput{
		Code:         r.Code,
		Description:  r.Description,
		Value:        r.Value,
		IsPercentage: r.IsPercentage,
		IsActive:     r.IsActive,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
	}
}

// GetAdminDiscounts 折扣码列表
func (h *Handler) GetAdminDiscounts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.DiscountService.ListDiscounts(repository.DiscountListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		IsActive: parseBoolNullable(c.Query("is_active")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminDiscount 折扣码详情
func (h *Handler) GetAdminDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.DiscountService.GetDiscount(id)
	if err != nil {
		respondServiceError(c, err, discountErrorRules)
		return
	}
	response.Success(c, item)
}

// CreateDiscount 创建折扣码
func (h *Handler) CreateDiscount(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.DiscountService.CreateDiscount(req.toInput(), actorID)
	if err != nil {
		respondServiceError(c, err, discountErrorRules)
		return
	}
	response.Success(c, item)
}

// UpdateDiscount 更新折扣码
func (h *Handler) UpdateDiscount(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.DiscountService.UpdateDiscount(id, req.toInput(), actorID)
	if err != nil {
		respondServiceError(c, err, discountErrorRules)
		return
	}
	response.Success(c, item)
}

// DeleteDiscount 软删除折扣码
func (h *Handler) DeleteDiscount(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountService.DeleteDiscount(id, actorID); err != nil {
		respondServiceError(c, err, discountErrorRules)
		return
	}
	response.Success(c, nil)
}
