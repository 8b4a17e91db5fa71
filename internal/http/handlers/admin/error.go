package admin

import (
	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var boxTypeErrorRules = []handlershared.MappedError{
	{Target: service.ErrBoxTypeInvalid, Code: response.CodeBadRequest, Key: "error.box_type_invalid"},
	{Target: service.ErrBoxTypeNotFound, Code: response.CodeNotFound, Key: "error.box_type_not_found"},
}

var discountErrorRules = []handlershared.MappedError{
	{Target: service.ErrDiscountCodeExists, Code: response.CodeConflict, Key: "error.discount_code_exists"},
	{Target: service.ErrDiscountCodeRequired, Code: response.CodeBadRequest, Key: "error.discount_code_required"},
	{Target: service.ErrDiscountInvalidValue, Code: response.CodeBadRequest, Key: "error.discount_value_invalid"},
	{Target: service.ErrDiscountInvalidPeriod, Code: response.CodeBadRequest, Key: "error.discount_period_invalid"},
	{Target: service.ErrDiscountNotFound, Code: response.CodeNotFound, Key: "error.discount_not_found"},
}

var orderErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeConflict, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderAlreadyPaid, Code: response.CodeConflict, Key: "error.order_already_paid"},
	{Target: service.ErrInvalidOrderStatus, Code: response.CodeBadRequest, Key: "error.order_target_status_invalid"},
	{Target: service.ErrOrderItemsRequired, Code: response.CodeBadRequest, Key: "error.order_ids_required"},
}

var subscriptionErrorRules = []handlershared.MappedError{
	{Target: service.ErrScheduleNotFound, Code: response.CodeNotFound, Key: "error.schedule_not_found"},
	{Target: service.ErrInvalidDeliverySlot, Code: response.CodeBadRequest, Key: "error.subscription_slot"},
	{Target: service.ErrDeliveryAlreadyDone, Code: response.CodeConflict, Key: "error.delivery_done"},
}

var reviewErrorRules = []handlershared.MappedError{
	{Target: service.ErrReviewNotFound, Code: response.CodeNotFound, Key: "error.review_not_found"},
}

var userErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error, rules ...[]handlershared.MappedError) {
	handlershared.RespondMapped(c, err, rules...)
}
