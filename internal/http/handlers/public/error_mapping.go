package public

import (
	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

var authErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.credentials_invalid"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrInvalidToken, Code: response.CodeUnauthorized, Key: "error.token_invalid"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
}

var cartErrorRules = []mappedHandlerError{
	{Target: service.ErrEmptyCart, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.quantity_invalid"},
	{Target: service.ErrBoxTypeNotFound, Code: response.CodeNotFound, Key: "error.box_type_not_found"},
	{Target: service.ErrCartBusy, Code: response.CodeConflict, Key: "error.cart_busy"},
}

var discountErrorRules = []mappedHandlerError{
	{Target: service.ErrDiscountNotFound, Code: response.CodeBadRequest, Key: "error.discount_not_found"},
	{Target: service.ErrDiscountInactive, Code: response.CodeBadRequest, Key: "error.discount_inactive"},
	{Target: service.ErrDiscountNotStarted, Code: response.CodeBadRequest, Key: "error.discount_not_started"},
	{Target: service.ErrDiscountExpired, Code: response.CodeBadRequest, Key: "error.discount_expired"},
	{Target: service.ErrDiscountAlreadyUsed, Code: response.CodeConflict, Key: "error.discount_used"},
	{Target: service.ErrDiscountCodeRequired, Code: response.CodeBadRequest, Key: "error.discount_code_required"},
	{Target: service.ErrInvalidDiscount, Code: response.CodeBadRequest, Key: "error.discount_invalid"},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrCustomerNotFound, Code: response.CodeNotFound, Key: "error.customer_not_found"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderForbidden, Code: response.CodeForbidden, Key: "error.order_forbidden"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeConflict, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderAlreadyPaid, Code: response.CodeConflict, Key: "error.order_already_paid"},
	{Target: service.ErrInvalidDeliveryMethod, Code: response.CodeBadRequest, Key: "error.delivery_method_invalid"},
	{Target: service.ErrInvalidPaymentMethod, Code: response.CodeBadRequest, Key: "error.payment_method_invalid"},
	{Target: service.ErrRecipientRequired, Code: response.CodeBadRequest, Key: "error.recipient_required"},
}

var paymentErrorRules = []mappedHandlerError{
	{Target: service.ErrPaymentMethodMismatch, Code: response.CodeBadRequest, Key: "error.payment_method_mismatch"},
	{Target: service.ErrPaymentGatewayNotConfigured, Code: response.CodeInternal, Key: "error.payment_gateway_disabled"},
	{Target: service.ErrPaymentGatewayFailed, Code: response.CodeBadGateway, Key: "error.payment_gateway_failed"},
	{Target: service.ErrPaymentLinkBusy, Code: response.CodeConflict, Key: "error.payment_link_busy"},
}

var subscriptionErrorRules = []mappedHandlerError{
	{Target: service.ErrSubscriptionStartInPast, Code: response.CodeBadRequest, Key: "error.subscription_start_past"},
	{Target: service.ErrInvalidDuration, Code: response.CodeBadRequest, Key: "error.subscription_duration"},
	{Target: service.ErrInvalidDeliveryDays, Code: response.CodeBadRequest, Key: "error.subscription_days"},
	{Target: service.ErrInvalidDeliverySlot, Code: response.CodeBadRequest, Key: "error.subscription_slot"},
	{Target: service.ErrSubscriptionNotFound, Code: response.CodeNotFound, Key: "error.subscription_not_found"},
	{Target: service.ErrSubscriptionExists, Code: response.CodeConflict, Key: "error.subscription_exists"},
	{Target: service.ErrSubscriptionNotActive, Code: response.CodeConflict, Key: "error.subscription_inactive"},
	{Target: service.ErrScheduleNotFound, Code: response.CodeNotFound, Key: "error.schedule_not_found"},
	{Target: service.ErrSubscriptionForbidden, Code: response.CodeForbidden, Key: "error.subscription_forbidden"},
	{Target: service.ErrDeliveryAlreadyDone, Code: response.CodeConflict, Key: "error.delivery_done"},
	{Target: service.ErrBoxTypeNotFound, Code: response.CodeNotFound, Key: "error.box_type_not_found"},
}

var reviewErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidRating, Code: response.CodeBadRequest, Key: "error.rating_invalid"},
	{Target: service.ErrReviewNotAllowed, Code: response.CodeBadRequest, Key: "error.review_not_allowed"},
	{Target: service.ErrReviewExists, Code: response.CodeConflict, Key: "error.review_exists"},
	{Target: service.ErrBoxTypeNotFound, Code: response.CodeNotFound, Key: "error.box_type_not_found"},
}

func respondServiceError(c *gin.Context, err error, rules ...[]mappedHandlerError) {
	handlershared.RespondMapped(c, err, rules...)
}
