package repository

import (
	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

// UserDiscountRepository 折扣使用记录数据访问接口
type UserDiscountRepository interface {
	Exists(userID, discountID uint) (bool, error)
	Create(record *models.UserDiscount) error
	CountByDiscount(discountID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormUserDiscountRepository
}

// GormUserDiscountRepository GORM 实现
type GormUserDiscountRepository struct {
	db *gorm.DB
}

// NewUserDiscountRepository 创建折扣使用记录仓库
func NewUserDiscountRepository(db *gorm.DB) *GormUserDiscountRepository {
	return &GormUserDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserDiscountRepository) WithTx(tx *gorm.DB) *GormUserDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormUserDiscountRepository{db: tx}
}

// Exists 判断用户是否已使用过该折扣
func (r *GormUserDiscountRepository) Exists(userID, discountID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.UserDiscount{}).
		Where("user_id = ? AND discount_id = ?", userID, discountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 写入使用记录，重复使用由唯一索引拦截
func (r *GormUserDiscountRepository) Create(record *models.UserDiscount) error {
	return r.db.Create(record).Error
}

// CountByDiscount 统计折扣使用次数
func (r *GormUserDiscountRepository) CountByDiscount(discountID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.UserDiscount{}).Where("discount_id = ?", discountID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
