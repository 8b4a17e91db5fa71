package service

import (
	"strings"

	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"
)

const maxReviewCommentLength = 2000

// ReviewService 评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	boxTypeRepo repository.BoxTypeRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, boxTypeRepo repository.BoxTypeRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, orderRepo: orderRepo, boxTypeRepo: boxTypeRepo}
}

// CreateReviewInput 提交评价输入
type CreateReviewInput struct {
	UserID    uint
	OrderID   uint
	BoxTypeID uint
	Rating    int
	Comment   string
}

// ReviewSummary 品类评价列表与评分汇总
type ReviewSummary struct {
	Items         []models.Review `json:"items"`
	Total         int64           `json:"total"`
	AverageRating float64         `json:"average_rating"`
}

// Create 提交评价：仅已完成且包含该品类的订单可评价，每单每品类一次
func (s *ReviewService) Create(input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	ok, err := s.orderRepo.HasCompletedOrderWithBox(input.UserID, input.OrderID, input.BoxTypeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReviewNotAllowed
	}

	comment := strings.TrimSpace(input.Comment)
	if runes := []rune(comment); len(runes) > maxReviewCommentLength {
		comment = string(runes[:maxReviewCommentLength])
	}
	review := &models.Review{
		UserID:    input.UserID,
		OrderID:   input.OrderID,
		BoxTypeID: input.BoxTypeID,
		Rating:    input.Rating,
		Comment:   comment,
	}
	review.StampCreate(input.UserID)
	if err := s.reviewRepo.Create(review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	logger.Infow("review_created",
		"review_id", review.ID,
		"user_id", input.UserID,
		"order_id", input.OrderID,
		"box_type_id", input.BoxTypeID,
	)
	return review, nil
}

// ListByBoxType 前台品类评价列表
func (s *ReviewService) ListByBoxType(boxTypeID uint, page, pageSize int) (*ReviewSummary, error) {
	boxType, err := s.boxTypeRepo.GetActiveByID(boxTypeID)
	if err != nil {
		return nil, err
	}
	if boxType == nil {
		return nil, ErrBoxTypeNotFound
	}
	rows, total, err := s.reviewRepo.List(repository.ReviewListFilter{BoxTypeID: boxTypeID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, err
	}
	avg, _, err := s.reviewRepo.AverageRating(boxTypeID)
	if err != nil {
		return nil, err
	}
	return &ReviewSummary{Items: rows, Total: total, AverageRating: avg}, nil
}

// ListAdmin 管理端评价列表
func (s *ReviewService) ListAdmin(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.List(filter)
}

// Delete 管理端删除评价（软删除）
func (s *ReviewService) Delete(id uint, actorID uint) error {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if err := s.reviewRepo.Delete(id, actorID); err != nil {
		return err
	}
	logger.Infow("review_deleted", "review_id", id, "actor_id", actorID)
	return nil
}
