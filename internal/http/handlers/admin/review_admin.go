package admin

import (
	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminReviews 评价列表
func (h *Handler) GetAdminReviews(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.ReviewService.ListAdmin(repository.ReviewListFilter{
		Page:      page,
		PageSize:  pageSize,
		BoxTypeID: handlershared.QueryUint(c, "box_type_id"),
		UserID:    handlershared.QueryUint(c, "user_id"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// DeleteReview 软删除评价
func (h *Handler) DeleteReview(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ReviewService.Delete(id, actorID); err != nil {
		respondServiceError(c, err, reviewErrorRules)
		return
	}
	response.Success(c, nil)
}
