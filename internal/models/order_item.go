package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
type OrderItem struct {
	ID        uint   `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint   `gorm:"index;not null" json:"order_id"`                          // 订单ID
	BoxTypeID uint   `gorm:"index;not null" json:"box_type_id"`                       // 盒子品类ID
	BoxName   string `gorm:"type:varchar(120)" json:"box_name"`                       // 品类名称快照
	Quantity  int    `gorm:"not null" json:"quantity"`                                // 数量
	UnitPrice Money  `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 加购时单价快照
	AuditActors
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
