package models

import "time"

// PaymentWebhookEvent 支付回调去重记录
type PaymentWebhookEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	Provider    string    `gorm:"type:varchar(32);not null" json:"provider"`               // 回调来源
	EventKey    string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"event_key"` // 去重键
	OrderCode   int64     `gorm:"index" json:"order_code"`                                 // 网关订单号
	Status      string    `gorm:"type:varchar(32)" json:"status"`                          // 回调状态
	Payload     string    `gorm:"type:text" json:"-"`                                      // 原始报文
	ProcessedAt time.Time `gorm:"index" json:"processed_at"`                               // 处理时间
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (PaymentWebhookEvent) TableName() string {
	return "payment_webhook_events"
}
