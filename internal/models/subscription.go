package models

import (
	"time"

	"gorm.io/gorm"
)

// WeeklyBlindBoxSubscription 每周盲盒订阅
type WeeklyBlindBoxSubscription struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                          // 主键
	UserID         uint      `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	BoxTypeID      uint      `gorm:"index;not null" json:"box_type_id"`                             // 盒子品类ID
	StartDate      time.Time `gorm:"index;not null" json:"start_date"`                              // 开始日期（周一）
	EndDate        time.Time `gorm:"index;not null" json:"end_date"`                                // 结束日期
	DurationWeeks  int       `gorm:"not null" json:"duration_weeks"`                                // 订阅周数
	WeeklyPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"weekly_price"`     // 每周价格
	TotalPrice     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`      // 总价
	PerBoxPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"per_box_price"`    // 单盒价格
	SavingsPerWeek Money     `gorm:"type:decimal(20,2);not null;default:0" json:"savings_per_week"` // 每周节省
	DeliveryDay1   int       `gorm:"not null" json:"delivery_day_1"`                                // 第一次配送星期（time.Weekday）
	DeliveryDay2   int       `gorm:"not null" json:"delivery_day_2"`                                // 第二次配送星期（time.Weekday）
	DeliveryMethod string    `gorm:"type:varchar(32)" json:"delivery_method"`                       // 配送方式
	PaymentMethod  string    `gorm:"type:varchar(32)" json:"payment_method"`                        // 支付方式
	RecipientName  string    `gorm:"type:varchar(120)" json:"recipient_name"`                       // 收件人
	Phone          string    `gorm:"type:varchar(32)" json:"phone"`                                 // 联系电话
	Address        string    `gorm:"type:varchar(500)" json:"address"`                              // 配送地址
	Notes          string    `gorm:"type:text" json:"notes"`                                        // 备注
	Status         string    `gorm:"index;not null" json:"status"`                                  // 订阅状态
	AuditActors
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间

	Schedules []WeeklyDeliverySchedule `gorm:"foreignKey:SubscriptionID" json:"schedules,omitempty"` // 每周配送计划
}

// TableName 指定表名
func (WeeklyBlindBoxSubscription) TableName() string {
	return "weekly_blind_box_subscriptions"
}

// WeeklyDeliverySchedule 订阅周配送计划（每周两次配送）
type WeeklyDeliverySchedule struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                               // 主键
	SubscriptionID     uint      `gorm:"index;not null" json:"subscription_id"`              // 订阅ID
	WeekNumber         int       `gorm:"not null" json:"week_number"`                        // 第几周（从 1 开始）
	WeekStart          time.Time `gorm:"not null" json:"week_start"`                         // 周一
	WeekEnd            time.Time `gorm:"not null" json:"week_end"`                           // 周日
	Delivery1Date      time.Time `gorm:"not null" json:"delivery_1_date"`                    // 第一次配送日期
	Delivery1Delivered bool      `gorm:"not null;default:false" json:"delivery_1_delivered"` // 第一次是否已送达
	Delivery1Paused    bool      `gorm:"not null;default:false" json:"delivery_1_paused"`    // 第一次是否暂停
	Delivery2Date      time.Time `gorm:"not null" json:"delivery_2_date"`                    // 第二次配送日期
	Delivery2Delivered bool      `gorm:"not null;default:false" json:"delivery_2_delivered"` // 第二次是否已送达
	Delivery2Paused    bool      `gorm:"not null;default:false" json:"delivery_2_paused"`    // 第二次是否暂停
	AuditActors
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (WeeklyDeliverySchedule) TableName() string {
	return "weekly_delivery_schedules"
}
