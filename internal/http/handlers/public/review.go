package public

import (
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateReviewRequest 提交评价请求
type CreateReviewRequest struct {
	OrderID   uint   `json:"order_id" binding:"required"`
	BoxTypeID uint   `json:"box_type_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// CreateReview 对已完成订单中的盒子提交评价
func (h *Handler) CreateReview(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	review, err := h.ReviewService.Create(service.CreateReviewInput{
		UserID:    uid,
		OrderID:   req.OrderID,
		BoxTypeID: req.BoxTypeID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondServiceError(c, err, reviewErrorRules)
		return
	}
	response.Success(c, review)
}
