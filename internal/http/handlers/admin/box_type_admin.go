package admin

import (
	"strings"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/repository"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BoxTypeRequest 创建/更新盒子品类请求
type BoxTypeRequest struct {
	Name        string          `json:"name" binding:"required"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
	SortOrder   int             `json:"sort_order"`
}

func (r BoxTypeRequest) toInput() service.BoxTypeInput {
	return service.BoxTypeInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// GetAdminBoxTypes 管理端品类列表（含下架）
func (h *Handler) GetAdminBoxTypes(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.BoxTypeService.ListAdmin(repository.BoxTypeListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminBoxType 管理端品类详情
func (h *Handler) GetAdminBoxType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.BoxTypeService.GetAdmin(id)
	if err != nil {
		respondServiceError(c, err, boxTypeErrorRules)
		return
	}
	response.Success(c, item)
}

// CreateBoxType 创建品类
func (h *Handler) CreateBoxType(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	var req BoxTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.BoxTypeService.Create(req.toInput(), actorID)
	if err != nil {
		respondServiceError(c, err, boxTypeErrorRules)
		return
	}
	response.Success(c, item)
}

// UpdateBoxType 更新品类
func (h *Handler) UpdateBoxType(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req BoxTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.BoxTypeService.Update(id, req.toInput(), actorID)
	if err != nil {
		respondServiceError(c, err, boxTypeErrorRules)
		return
	}
	response.Success(c, item)
}

// DeleteBoxType 软删除品类
func (h *Handler) DeleteBoxType(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.BoxTypeService.Delete(id, actorID); err != nil {
		respondServiceError(c, err, boxTypeErrorRules)
		return
	}
	response.Success(c, nil)
}
