package constants

// 订单状态常量（购物车与订单共用同一聚合）
const (
	OrderStatusCart       = "Cart"
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// 配送方式常量
const (
	DeliveryMethodStandard = "Standard"
	DeliveryMethodExpress  = "Express"
	DeliveryMethodPickup   = "Pickup"
)

// 支付方式常量
const (
	PaymentMethodCOD          = "COD"
	PaymentMethodPayOS        = "PayOS"
	PaymentMethodBankTransfer = "BankTransfer"
)

// PayOS 支付状态常量
const (
	PayOSStatusPaid      = "PAID"
	PayOSStatusCancelled = "CANCELLED"
	PayOSStatusExpired   = "EXPIRED"
	PayOSStatusPending   = "PENDING"
)

// 订阅状态常量
const (
	SubscriptionStatusActive    = "Active"
	SubscriptionStatusInactive  = "Inactive"
	SubscriptionStatusCancelled = "Cancelled"
)

// 用户角色与状态常量
const (
	UserRoleCustomer = "customer"
	UserRoleStaff    = "staff"
	UserRoleAdmin    = "admin"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 支付回调提供方
const (
	WebhookProviderPayOS = "payos"
)

// 异步队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskOrderConfirmationEmail = "order:confirmation_email"
	TaskOrderAdminNotice       = "order:admin_notice"
	TaskOrderHighValueAlert    = "order:high_value_alert"
	TaskOrderStatusEmail       = "order:status_email"
)

// 订单编号前缀
const (
	OrderNoPrefixCart  = "CT"
	OrderNoPrefixOrder = "BX"
)
