package service

import (
	"strings"
	"unicode"

	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BoxTypeService 盒子品类服务
type BoxTypeService struct {
	repo       repository.BoxTypeRepository
	reviewRepo repository.ReviewRepository
}

// NewBoxTypeService 创建品类服务
func NewBoxTypeService(repo repository.BoxTypeRepository, reviewRepo repository.ReviewRepository) *BoxTypeService {
	return &BoxTypeService{repo: repo, reviewRepo: reviewRepo}
}

// BoxTypeInput 创建/更新品类输入
type BoxTypeInput struct {
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	IsActive    *bool
	SortOrder   int
}

// BoxTypeDetail 品类详情（含评分汇总）
type BoxTypeDetail struct {
	models.BoxType
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// ListPublic 前台品类列表（仅上架）
func (s *BoxTypeService) ListPublic(search string, page, pageSize int) ([]models.BoxType, int64, error) {
	return s.repo.List(repository.BoxTypeListFilter{Page: page, PageSize: pageSize, Search: search, OnlyActive: true})
}

// GetPublic 前台品类详情
func (s *BoxTypeService) GetPublic(id uint) (*BoxTypeDetail, error) {
	boxType, err := s.repo.GetActiveByID(id)
	if err != nil {
		return nil, err
	}
	if boxType == nil {
		return nil, ErrBoxTypeNotFound
	}
	detail := &BoxTypeDetail{BoxType: *boxType}
	if s.reviewRepo != nil {
		avg, count, err := s.reviewRepo.AverageRating(boxType.ID)
		if err != nil {
			return nil, err
		}
		detail.AverageRating = avg
		detail.ReviewCount = count
	}
	return detail, nil
}

// ListAdmin 管理端品类列表
func (s *BoxTypeService) ListAdmin(filter repository.BoxTypeListFilter) ([]models.BoxType, int64, error) {
	return s.repo.List(filter)
}

// GetAdmin 管理端品类详情（含下架）
func (s *BoxTypeService) GetAdmin(id uint) (*models.BoxType, error) {
	boxType, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if boxType == nil {
		return nil, ErrBoxTypeNotFound
	}
	return boxType, nil
}

// Create 创建品类
func (s *BoxTypeService) Create(input BoxTypeInput, actorID uint) (*models.BoxType, error) {
	if err := validateBoxTypeInput(input); err != nil {
		return nil, err
	}
	boxType := &models.BoxType{IsActive: true}
	applyBoxTypeInput(boxType, input)
	boxType.StampCreate(actorID)
	if err := s.repo.Create(boxType); err != nil {
		return nil, err
	}
	logger.Infow("box_type_created", "box_type_id", boxType.ID, "actor_id", actorID)
	return boxType, nil
}

// Update 更新品类，已下单订单保留价格快照
func (s *BoxTypeService) Update(id uint, input BoxTypeInput, actorID uint) (*models.BoxType, error) {
	if err := validateBoxTypeInput(input); err != nil {
		return nil, err
	}
	boxType, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	applyBoxTypeInput(boxType, input)
	boxType.StampUpdate(actorID)
	if err := s.repo.Update(boxType); err != nil {
		return nil, err
	}
	logger.Infow("box_type_updated", "box_type_id", id, "actor_id", actorID)
	return boxType, nil
}

// Delete 软删除品类
func (s *BoxTypeService) Delete(id uint, actorID uint) error {
	if _, err := s.GetAdmin(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id, actorID); err != nil {
		return err
	}
	logger.Infow("box_type_deleted", "box_type_id", id, "actor_id", actorID)
	return nil
}

func validateBoxTypeInput(input BoxTypeInput) error {
	if strings.TrimSpace(input.Name) == "" || !input.Price.IsPositive() {
		return ErrBoxTypeInvalid
	}
	return nil
}

func applyBoxTypeInput(boxType *models.BoxType, input BoxTypeInput) {
	boxType.Name = strings.TrimSpace(input.Name)
	boxType.Slug = strings.TrimSpace(input.Slug)
	if boxType.Slug == "" {
		boxType.Slug = Slugify(boxType.Name)
	}
	boxType.Description = strings.TrimSpace(input.Description)
	boxType.Price = models.NewMoneyFromDecimal(input.Price)
	boxType.ImageURL = strings.TrimSpace(input.ImageURL)
	boxType.SortOrder = input.SortOrder
	if input.IsActive != nil {
		boxType.IsActive = *input.IsActive
	}
}

// Slugify 去除变音符号后生成小写连字符标识
func Slugify(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		folded = raw
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == 'đ':
			r = 'd'
		case r > unicode.MaxASCII:
			pendingDash = b.Len() > 0
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(r)
			continue
		}
		pendingDash = b.Len() > 0
	}
	return b.String()
}
