package service

import (
	"strings"
	"time"

	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountService 折扣码服务
type DiscountService struct {
	discountRepo repository.DiscountRepository
	usageRepo    repository.UserDiscountRepository
	now          func() time.Time
}

// NewDiscountService 创建折扣码服务
func NewDiscountService(discountRepo repository.DiscountRepository, usageRepo repository.UserDiscountRepository) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
		usageRepo:    usageRepo,
		now:          time.Now,
	}
}

// DiscountInput 管理端折扣码输入
type DiscountInput struct {
	Code         string
	Description  string
	Value        decimal.Decimal
	IsPercentage bool
	IsActive     bool
	StartDate    time.Time
	EndDate      time.Time
}

// DiscountPreview 折扣试算结果
type DiscountPreview struct {
	Discount *models.Discount `json:"discount"`
	PriceBreakdown
}

// Validate 校验折扣码本身是否可用（存在、未删除、启用、在有效期内）
func (s *DiscountService) Validate(code string) (*models.Discount, error) {
	return validateDiscount(s.discountRepo, code, s.now())
}

// ValidateForRedemption 校验折扣码对指定用户是否可用
func (s *DiscountService) ValidateForRedemption(code string, userID uint) (*models.Discount, error) {
	return validateDiscountForUser(s.discountRepo, s.usageRepo, code, userID, s.now())
}

// Redeem 在独立事务中核销折扣码
func (s *DiscountService) Redeem(code string, userID, orderID uint) (*models.Discount, error) {
	var discount *models.Discount
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		found, err := validateDiscountForUser(s.discountRepo.WithTx(tx), s.usageRepo.WithTx(tx), code, userID, s.now())
		if err != nil {
			return err
		}
		if err := s.RedeemTx(tx, found, userID, orderID); err != nil {
			return err
		}
		discount = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return discount, nil
}

// RedeemTx 在调用方事务中写入使用记录，并发重复核销由唯一索引拦截
func (s *DiscountService) RedeemTx(tx *gorm.DB, discount *models.Discount, userID, orderID uint) error {
	if discount == nil {
		return ErrDiscountNotFound
	}
	record := &models.UserDiscount{
		UserID:     userID,
		DiscountID: discount.ID,
		OrderID:    orderID,
		UsedAt:     s.now(),
		CreatedBy:  models.Actor(userID),
	}
	if err := s.usageRepo.WithTx(tx).Create(record); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrDiscountAlreadyUsed
		}
		return err
	}
	return nil
}

// Preview 试算折扣后的金额，不核销
func (s *DiscountService) Preview(code string, userID uint, amount decimal.Decimal) (*DiscountPreview, error) {
	discount, err := s.ValidateForRedemption(code, userID)
	if err != nil {
		return nil, err
	}
	final := ApplyDiscount(amount, discount)
	return &DiscountPreview{
		Discount: discount,
		PriceBreakdown: PriceBreakdown{
			TotalPrice:     models.NewMoneyFromDecimal(amount),
			DiscountAmount: models.NewMoneyFromDecimal(amount.Sub(final)),
			FinalPrice:     models.NewMoneyFromDecimal(final),
		},
	}, nil
}

// GetDiscount 获取折扣码详情
func (s *DiscountService) GetDiscount(id uint) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}

// ListDiscounts 折扣码列表
func (s *DiscountService) ListDiscounts(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.discountRepo.List(filter)
}

// CreateDiscount 创建折扣码
func (s *DiscountService) CreateDiscount(input DiscountInput, actorID uint) (*models.Discount, error) {
	code, err := s.checkDiscountInput(input, 0)
	if err != nil {
		return nil, err
	}
	discount := &models.Discount{
		Code:         code,
		Description:  strings.TrimSpace(input.Description),
		Value:        models.NewMoneyFromDecimal(input.Value),
		IsPercentage: input.IsPercentage,
		IsActive:     input.IsActive,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	}
	discount.StampCreate(actorID)
	if err := s.discountRepo.Create(discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// UpdateDiscount 更新折扣码
func (s *DiscountService) UpdateDiscount(id uint, input DiscountInput, actorID uint) (*models.Discount, error) {
	discount, err := s.GetDiscount(id)
	if err != nil {
		return nil, err
	}
	code, err := s.checkDiscountInput(input, id)
	if err != nil {
		return nil, err
	}
	discount.Code = code
	discount.Description = strings.TrimSpace(input.Description)
	discount.Value = models.NewMoneyFromDecimal(input.Value)
	discount.IsPercentage = input.IsPercentage
	discount.IsActive = input.IsActive
	discount.StartDate = input.StartDate
	discount.EndDate = input.EndDate
	discount.StampUpdate(actorID)
	if err := s.discountRepo.Update(discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// DeleteDiscount 软删除折扣码
func (s *DiscountService) DeleteDiscount(id uint, actorID uint) error {
	if _, err := s.GetDiscount(id); err != nil {
		return err
	}
	return s.discountRepo.Delete(id, actorID)
}

func (s *DiscountService) checkDiscountInput(input DiscountInput, selfID uint) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return "", ErrDiscountCodeRequired
	}
	if !input.Value.IsPositive() {
		return "", ErrDiscountInvalidValue
	}
	if input.IsPercentage && input.Value.GreaterThan(hundred) {
		return "", ErrDiscountInvalidValue
	}
	if !input.StartDate.Before(input.EndDate) {
		return "", ErrDiscountInvalidPeriod
	}
	existing, err := s.discountRepo.GetByCode(code)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.ID != selfID {
		return "", ErrDiscountCodeExists
	}
	return code, nil
}

func validateDiscount(discountRepo repository.DiscountRepository, code string, now time.Time) (*models.Discount, error) {
	discount, err := discountRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	if !discount.IsActive {
		return nil, ErrDiscountInactive
	}
	if now.Before(discount.StartDate) {
		return nil, ErrDiscountNotStarted
	}
	if now.After(discount.EndDate) {
		return nil, ErrDiscountExpired
	}
	return discount, nil
}

func validateDiscountForUser(discountRepo repository.DiscountRepository, usageRepo repository.UserDiscountRepository, code string, userID uint, now time.Time) (*models.Discount, error) {
	discount, err := validateDiscount(discountRepo, code, now)
	if err != nil {
		return nil, err
	}
	used, err := usageRepo.Exists(userID, discount.ID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrDiscountAlreadyUsed
	}
	return discount, nil
}
