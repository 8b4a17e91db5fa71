package repository

import (
	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

// BoxTypeRepository 盒子品类数据访问接口
type BoxTypeRepository interface {
	GetByID(id uint) (*models.BoxType, error)
	GetActiveByID(id uint) (*models.BoxType, error)
	ListByIDs(ids []uint) ([]models.BoxType, error)
	List(filter BoxTypeListFilter) ([]models.BoxType, int64, error)
	Create(boxType *models.BoxType) error
	Update(boxType *models.BoxType) error
	Delete(id uint, actorID uint) error
	WithTx(tx *gorm.DB) *GormBoxTypeRepository
}

// GormBoxTypeRepository GORM 实现
type GormBoxTypeRepository struct {
	db *gorm.DB
}

// NewBoxTypeRepository 创建盒子品类仓库
func NewBoxTypeRepository(db *gorm.DB) *GormBoxTypeRepository {
	return &GormBoxTypeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBoxTypeRepository) WithTx(tx *gorm.DB) *GormBoxTypeRepository {
	if tx == nil {
		return r
	}
	return &GormBoxTypeRepository{db: tx}
}

// GetByID 根据 ID 获取品类
func (r *GormBoxTypeRepository) GetByID(id uint) (*models.BoxType, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.BoxType](r.db, id)
}

// GetActiveByID 获取上架中的品类
func (r *GormBoxTypeRepository) GetActiveByID(id uint) (*models.BoxType, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.BoxType](r.db.Where("is_active = ?", true), id)
}

// ListByIDs 批量获取品类
func (r *GormBoxTypeRepository) ListByIDs(ids []uint) ([]models.BoxType, error) {
	var rows []models.BoxType
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List 品类列表
func (r *GormBoxTypeRepository) List(filter BoxTypeListFilter) ([]models.BoxType, int64, error) {
	query := r.db.Model(&models.BoxType{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	query = applySearch(query, filter.Search, "name", "slug")
	return listPage[models.BoxType](query, filter.Page, filter.PageSize, "sort_order desc", "id asc")
}

// Create 创建品类
func (r *GormBoxTypeRepository) Create(boxType *models.BoxType) error {
	return r.db.Create(boxType).Error
}

// Update 更新品类
func (r *GormBoxTypeRepository) Update(boxType *models.BoxType) error {
	return r.db.Save(boxType).Error
}

// Delete 软删除品类
func (r *GormBoxTypeRepository) Delete(id uint, actorID uint) error {
	return softDelete(r.db, &models.BoxType{}, id, actorID)
}
