package repository

import (
	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

// PaymentWebhookEventRepository 支付回调去重数据访问接口
type PaymentWebhookEventRepository interface {
	// Record 写入回调事件，返回 false 表示该事件已处理过
	Record(event *models.PaymentWebhookEvent) (bool, error)
	GetByEventKey(key string) (*models.PaymentWebhookEvent, error)
	WithTx(tx *gorm.DB) *GormPaymentWebhookEventRepository
}

// GormPaymentWebhookEventRepository GORM 实现
type GormPaymentWebhookEventRepository struct {
	db *gorm.DB
}

// NewPaymentWebhookEventRepository 创建支付回调去重仓库
func NewPaymentWebhookEventRepository(db *gorm.DB) *GormPaymentWebhookEventRepository {
	return &GormPaymentWebhookEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentWebhookEventRepository) WithTx(tx *gorm.DB) *GormPaymentWebhookEventRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentWebhookEventRepository{db: tx}
}

// Record 写入回调事件
func (r *GormPaymentWebhookEventRepository) Record(event *models.PaymentWebhookEvent) (bool, error) {
	if err := r.db.Create(event).Error; err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByEventKey 根据去重键获取事件
func (r *GormPaymentWebhookEventRepository) GetByEventKey(key string) (*models.PaymentWebhookEvent, error) {
	return takeOne[models.PaymentWebhookEvent](r.db.Where("event_key = ?", key))
}
