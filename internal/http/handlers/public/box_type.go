package public

import (
	"strings"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListBoxTypes 上架盒子品类列表
func (h *Handler) ListBoxTypes(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.BoxTypeService.ListPublic(strings.TrimSpace(c.Query("search")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetBoxType 盒子品类详情（含评分）
func (h *Handler) GetBoxType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.BoxTypeService.GetPublic(id)
	if err != nil {
		respondServiceError(c, err, cartErrorRules)
		return
	}
	response.Success(c, detail)
}

// ListBoxTypeReviews 盒子品类评价列表
func (h *Handler) ListBoxTypeReviews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	summary, err := h.ReviewService.ListByBoxType(id, page, pageSize)
	if err != nil {
		respondServiceError(c, err, reviewErrorRules)
		return
	}
	response.SuccessWithPage(c, gin.H{
		"items":          summary.Items,
		"average_rating": summary.AverageRating,
	}, handlershared.BuildPagination(page, pageSize, summary.Total))
}
