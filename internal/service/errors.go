package service

import (
	"errors"
)

// 错误大类，处理层按大类映射响应码
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrExternalService = errors.New("external service error")
	ErrInternal        = errors.New("internal error")
)

// kindError 归属某一大类的业务错误
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// ErrorKind 返回错误所属大类，无法识别时归为 ErrInternal
func ErrorKind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrUnauthorized, ErrExternalService, ErrInternal} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// 购物车
var (
	ErrEmptyCart        = newKindError(ErrNotFound, "cart is empty")
	ErrCartItemNotFound = newKindError(ErrNotFound, "cart item not found")
	ErrInvalidQuantity  = newKindError(ErrValidation, "quantity must be between 1 and the line limit")
	ErrBoxTypeNotFound  = newKindError(ErrNotFound, "box type not found or inactive")
	ErrCartBusy         = newKindError(ErrConflict, "cart is being modified, retry later")
)

// 盒子品类
var (
	ErrBoxTypeInvalid = newKindError(ErrValidation, "box type name and price are required")
)

// 折扣
var (
	ErrInvalidDiscount       = newKindError(ErrValidation, "invalid discount")
	ErrDiscountNotFound      = newKindError(ErrInvalidDiscount, "discount code not found")
	ErrDiscountInactive      = newKindError(ErrInvalidDiscount, "discount code is inactive")
	ErrDiscountNotStarted    = newKindError(ErrInvalidDiscount, "discount code is not active yet")
	ErrDiscountExpired       = newKindError(ErrInvalidDiscount, "discount code has expired")
	ErrDiscountAlreadyUsed   = newKindError(ErrConflict, "discount code already used by this customer")
	ErrDiscountCodeExists    = newKindError(ErrConflict, "discount code already exists")
	ErrDiscountCodeRequired  = newKindError(ErrValidation, "discount code is required")
	ErrDiscountInvalidValue  = newKindError(ErrValidation, "discount value out of range")
	ErrDiscountInvalidPeriod = newKindError(ErrValidation, "discount start date must be before end date")
)

// 订单
var (
	ErrCustomerNotFound      = newKindError(ErrNotFound, "customer not found")
	ErrOrderNotFound         = newKindError(ErrNotFound, "order not found")
	ErrOrderForbidden        = newKindError(ErrUnauthorized, "order does not belong to the current customer")
	ErrOrderStatusInvalid    = newKindError(ErrConflict, "order status does not allow this operation")
	ErrOrderAlreadyPaid      = newKindError(ErrConflict, "order already paid")
	ErrInvalidOrderStatus    = newKindError(ErrValidation, "invalid order status")
	ErrInvalidDeliveryMethod = newKindError(ErrValidation, "invalid delivery method")
	ErrInvalidPaymentMethod  = newKindError(ErrValidation, "invalid payment method")
	ErrRecipientRequired     = newKindError(ErrValidation, "recipient name, phone and address are required")
	ErrOrderItemsRequired    = newKindError(ErrValidation, "order requires at least one item")
)

// 支付
var (
	ErrPaymentMethodMismatch       = newKindError(ErrValidation, "order is not paid through PayOS")
	ErrPaymentGatewayNotConfigured = newKindError(ErrInternal, "payment gateway is not configured")
	ErrPaymentGatewayFailed        = newKindError(ErrExternalService, "payment gateway request failed")
	ErrWebhookSignatureInvalid     = newKindError(ErrValidation, "webhook signature invalid")
	ErrWebhookPayloadInvalid       = newKindError(ErrValidation, "webhook payload invalid")
	ErrWebhookOrderNotFound        = newKindError(ErrNotFound, "webhook order not found")
	ErrWebhookAmountMismatch       = newKindError(ErrValidation, "webhook amount does not cover the order")
	ErrPaymentLinkBusy             = newKindError(ErrConflict, "payment link is being created, retry later")
)

// 订阅
var (
	ErrSubscriptionStartInPast = newKindError(ErrValidation, "subscription start date is in the past")
	ErrInvalidDuration         = newKindError(ErrValidation, "subscription duration out of range")
	ErrInvalidDeliveryDays     = newKindError(ErrValidation, "two distinct delivery days are required")
	ErrInvalidDeliverySlot     = newKindError(ErrValidation, "delivery slot must be 1 or 2")
	ErrSubscriptionNotFound    = newKindError(ErrNotFound, "subscription not found")
	ErrSubscriptionExists      = newKindError(ErrConflict, "an active subscription for this box already exists")
	ErrSubscriptionNotActive   = newKindError(ErrConflict, "subscription is not active")
	ErrScheduleNotFound        = newKindError(ErrNotFound, "delivery schedule not found")
	ErrSubscriptionForbidden   = newKindError(ErrUnauthorized, "subscription does not belong to the current customer")
	ErrDeliveryAlreadyDone     = newKindError(ErrConflict, "delivery slot already delivered")
)

// 评价
var (
	ErrInvalidRating    = newKindError(ErrValidation, "rating must be between 1 and 5")
	ErrReviewNotAllowed = newKindError(ErrValidation, "only completed orders containing the box can be reviewed")
	ErrReviewExists     = newKindError(ErrConflict, "review already submitted")
	ErrReviewNotFound   = newKindError(ErrNotFound, "review not found")
)

// 用户
var (
	ErrInvalidCredentials = newKindError(ErrUnauthorized, "invalid email or password")
	ErrUserDisabled       = newKindError(ErrUnauthorized, "account disabled")
	ErrInvalidToken       = newKindError(ErrUnauthorized, "invalid token")
	ErrUserNotFound       = newKindError(ErrNotFound, "user not found")
	ErrEmailExists        = newKindError(ErrConflict, "email already registered")
	ErrInvalidEmail       = newKindError(ErrValidation, "invalid email")
	ErrWeakPassword       = newKindError(ErrValidation, "password too weak")
	ErrInvalidRole        = newKindError(ErrValidation, "invalid role")
)

// 邮件
var (
	ErrEmailServiceDisabled      = newKindError(ErrInternal, "email service disabled")
	ErrEmailServiceNotConfigured = newKindError(ErrInternal, "email service not configured")
	ErrEmailRecipientRejected    = newKindError(ErrExternalService, "email recipient rejected")
	ErrEmailSendFailed           = newKindError(ErrExternalService, "email send failed")
)
