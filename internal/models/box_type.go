package models

import (
	"time"

	"gorm.io/gorm"
)

// BoxType 盒子品类（礼盒 / 盲盒等），订单项引用其价格快照
type BoxType struct {
	ID          uint   `gorm:"primarykey" json:"id"`                               // 主键
	Name        string `gorm:"type:varchar(120);not null" json:"name"`             // 名称
	Slug        string `gorm:"type:varchar(120);index" json:"slug"`                // 路由标识
	Description string `gorm:"type:text" json:"description"`                       // 描述
	Price       Money  `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url"`                 // 图片地址
	IsActive    bool   `gorm:"not null" json:"is_active"`                          // 是否上架
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`               // 排序
	AuditActors
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (BoxType) TableName() string {
	return "box_types"
}
