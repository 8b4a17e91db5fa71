package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（status=Cart 时即为用户购物车）
type Order struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                            // 主键
	OrderNo        string     `gorm:"uniqueIndex;not null" json:"order_no"`                            // 订单编号
	UserID         uint       `gorm:"index;not null" json:"user_id"`                                   // 用户ID
	Status         string     `gorm:"index;not null" json:"status"`                                    // 订单状态
	TotalPrice     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`        // 折前总价
	FinalPrice     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"final_price"`        // 折后应付
	DiscountCode   string     `gorm:"type:varchar(64)" json:"discount_code,omitempty"`                 // 折扣码
	DiscountID     *uint      `gorm:"index" json:"discount_id,omitempty"`                              // 折扣ID
	DeliveryMethod string     `gorm:"type:varchar(32)" json:"delivery_method"`                         // 配送方式
	PaymentMethod  string     `gorm:"type:varchar(32)" json:"payment_method"`                          // 支付方式
	RecipientName  string     `gorm:"type:varchar(120)" json:"recipient_name"`                         // 收件人
	Phone          string     `gorm:"type:varchar(32)" json:"phone"`                                   // 联系电话
	Email          string     `gorm:"type:varchar(255)" json:"email"`                                  // 联系邮箱
	Address        string     `gorm:"type:varchar(500)" json:"address"`                                // 详细地址
	Ward           string     `gorm:"type:varchar(120)" json:"ward"`                                   // 坊/社
	District       string     `gorm:"type:varchar(120)" json:"district"`                               // 区/县
	City           string     `gorm:"type:varchar(120)" json:"city"`                                   // 城市
	Notes          string     `gorm:"type:text" json:"notes"`                                          // 备注
	IsPaid         bool       `gorm:"not null;default:false" json:"is_paid"`                           // 是否已支付
	PaidAt         *time.Time `gorm:"index" json:"paid_at"`                                            // 支付时间
	IsDelivered    bool       `gorm:"not null;default:false" json:"is_delivered"`                      // 是否已送达
	DeliveredAt    *time.Time `json:"delivered_at"`                                                    // 送达时间
	PayOSOrderCode int64      `gorm:"column:payos_order_code;index" json:"payos_order_code,omitempty"` // PayOS 订单号
	PaymentLinkID  string     `gorm:"type:varchar(64);index" json:"payment_link_id,omitempty"`         // PayOS 支付链接ID
	CheckoutURL    string     `gorm:"type:varchar(500)" json:"checkout_url,omitempty"`                 // PayOS 收银台地址
	LinkExpiresAt  *time.Time `json:"link_expires_at,omitempty"`                                       // 支付链接过期时间
	SubscriptionID *uint      `gorm:"index" json:"subscription_id,omitempty"`                          // 关联订阅（订阅配套订单）
	CancelledAt    *time.Time `json:"cancelled_at"`                                                    // 取消时间
	AuditActors
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// ItemCount 返回订单内盒子总数
func (o *Order) ItemCount() int {
	if o == nil {
		return 0
	}
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
