package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 折扣码
type Discount struct {
	ID           uint      `gorm:"primarykey" json:"id"`                               // 主键
	Code         string    `gorm:"type:varchar(64);index;not null" json:"code"`        // 折扣码（未删除范围内唯一）
	Description  string    `gorm:"type:varchar(255)" json:"description"`               // 描述
	Value        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"value"` // 折扣值（百分比或固定金额）
	IsPercentage bool      `gorm:"not null;default:false" json:"is_percentage"`        // 是否百分比折扣
	IsActive     bool      `gorm:"not null" json:"is_active"`                          // 是否启用
	StartDate    time.Time `gorm:"index" json:"start_date"`                            // 生效时间
	EndDate      time.Time `gorm:"index" json:"end_date"`                              // 失效时间
	AuditActors
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// UserDiscount 用户折扣使用记录，存在即表示已使用
// 只追加不软删，(user_id, discount_id) 唯一索引保证同一用户最多使用一次。
type UserDiscount struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                           // 主键
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_discount_once" json:"user_id"`     // 用户ID
	DiscountID uint      `gorm:"not null;uniqueIndex:idx_user_discount_once" json:"discount_id"` // 折扣ID
	OrderID    uint      `gorm:"index" json:"order_id"`                                          // 订单ID
	UsedAt     time.Time `gorm:"not null" json:"used_at"`                                        // 使用时间
	CreatedBy  *uint     `json:"created_by,omitempty"`                                           // 创建人
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (UserDiscount) TableName() string {
	return "user_discounts"
}
