package repository

import (
	"strings"

	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 折扣码数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	GetByCode(code string) (*models.Discount, error)
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	Create(discount *models.Discount) error
	Update(discount *models.Discount) error
	Delete(id uint, actorID uint) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建折扣码仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// GetByID 根据 ID 获取折扣码
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.Discount](r.db, id)
}

// GetByCode 根据折扣码获取（大小写不敏感，仅未删除记录）
func (r *GormDiscountRepository) GetByCode(code string) (*models.Discount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	return takeOne[models.Discount](r.db.Where("UPPER(code) = ?", normalized).Order("id desc"))
}

// List 折扣码列表
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	query := r.db.Model(&models.Discount{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	query = applySearch(query, filter.Search, "code", "description")
	return listPage[models.Discount](query, filter.Page, filter.PageSize, "id desc")
}

// Create 创建折扣码
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Create(discount).Error
}

// Update 更新折扣码
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Save(discount).Error
}

// Delete 软删除折扣码
func (r *GormDiscountRepository) Delete(id uint, actorID uint) error {
	return softDelete(r.db, &models.Discount{}, id, actorID)
}
