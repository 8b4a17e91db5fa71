package repository

import (
	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository 订阅数据访问接口
type SubscriptionRepository interface {
	Create(subscription *models.WeeklyBlindBoxSubscription) error
	CreateSchedules(schedules []models.WeeklyDeliverySchedule) error
	GetByID(id uint) (*models.WeeklyBlindBoxSubscription, error)
	GetByIDAndUser(id, userID uint) (*models.WeeklyBlindBoxSubscription, error)
	GetSchedule(subscriptionID, scheduleID uint) (*models.WeeklyDeliverySchedule, error)
	MaxWeekNumber(subscriptionID uint) (int, error)
	List(filter SubscriptionListFilter) ([]models.WeeklyBlindBoxSubscription, int64, error)
	Update(subscription *models.WeeklyBlindBoxSubscription) error
	UpdateSchedule(schedule *models.WeeklyDeliverySchedule) error
	WithTx(tx *gorm.DB) *GormSubscriptionRepository
}

// GormSubscriptionRepository GORM 实现
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建订阅仓库
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSubscriptionRepository) WithTx(tx *gorm.DB) *GormSubscriptionRepository {
	if tx == nil {
		return r
	}
	return &GormSubscriptionRepository{db: tx}
}

func (r *GormSubscriptionRepository) withSchedules(query *gorm.DB) *gorm.DB {
	return query.Preload("Schedules", func(db *gorm.DB) *gorm.DB {
		return db.Order("week_number asc")
	})
}

// Create 创建订阅
func (r *GormSubscriptionRepository) Create(subscription *models.WeeklyBlindBoxSubscription) error {
	return r.db.Omit("Schedules").Create(subscription).Error
}

// CreateSchedules 批量创建配送计划
func (r *GormSubscriptionRepository) CreateSchedules(schedules []models.WeeklyDeliverySchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.Create(&schedules).Error
}

// GetByID 获取订阅详情
func (r *GormSubscriptionRepository) GetByID(id uint) (*models.WeeklyBlindBoxSubscription, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.WeeklyBlindBoxSubscription](r.withSchedules(r.db), id)
}

// GetByIDAndUser 获取用户订阅详情
func (r *GormSubscriptionRepository) GetByIDAndUser(id, userID uint) (*models.WeeklyBlindBoxSubscription, error) {
	return takeOne[models.WeeklyBlindBoxSubscription](r.withSchedules(r.db).Where("id = ? AND user_id = ?", id, userID))
}

// GetSchedule 获取订阅下的配送计划
func (r *GormSubscriptionRepository) GetSchedule(subscriptionID, scheduleID uint) (*models.WeeklyDeliverySchedule, error) {
	return takeOne[models.WeeklyDeliverySchedule](r.db.Where("id = ? AND subscription_id = ?", scheduleID, subscriptionID))
}

// MaxWeekNumber 返回订阅当前最大周序号
func (r *GormSubscriptionRepository) MaxWeekNumber(subscriptionID uint) (int, error) {
	var maxWeek *int
	if err := r.db.Model(&models.WeeklyDeliverySchedule{}).
		Where("subscription_id = ?", subscriptionID).
		Select("MAX(week_number)").
		Scan(&maxWeek).Error; err != nil {
		return 0, err
	}
	if maxWeek == nil {
		return 0, nil
	}
	return *maxWeek, nil
}

// List 订阅列表
func (r *GormSubscriptionRepository) List(filter SubscriptionListFilter) ([]models.WeeklyBlindBoxSubscription, int64, error) {
	query := r.db.Model(&models.WeeklyBlindBoxSubscription{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.BoxTypeID != 0 {
		query = query.Where("box_type_id = ?", filter.BoxTypeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.WeeklyBlindBoxSubscription
	if err := r.withSchedules(applyPagination(query, filter.Page, filter.PageSize)).
		Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update 保存订阅主表字段
func (r *GormSubscriptionRepository) Update(subscription *models.WeeklyBlindBoxSubscription) error {
	return r.db.Omit("Schedules").Save(subscription).Error
}

// UpdateSchedule 保存配送计划
func (r *GormSubscriptionRepository) UpdateSchedule(schedule *models.WeeklyDeliverySchedule) error {
	return r.db.Save(schedule).Error
}
