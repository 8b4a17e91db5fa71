package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Please sign in first",
		"error.forbidden":                "You do not have permission to perform this action",
		"error.not_found":                "Resource not found",
		"error.conflict":                 "The request conflicts with the current state",
		"error.too_many_requests":        "Too many requests, please try again later",
		"error.internal":                 "Internal server error",
		"error.external_service":         "An upstream service is unavailable, please try again later",
		"error.invalid_id":               "Invalid id",
		"error.user_id_invalid":          "Invalid user id",
		"error.user_id_type_invalid":     "Invalid user id type",
		"error.token_invalid":            "Sign-in expired, please sign in again",
		"error.credentials_invalid":      "Incorrect email or password",
		"error.user_disabled":            "This account has been disabled",
		"error.email_exists":             "This email is already registered",
		"error.email_invalid":            "Invalid email address",
		"error.password_weak":            "Password must be at least %d characters",
		"error.role_invalid":             "Invalid role",
		"error.cart_empty":               "Your cart is empty",
		"error.cart_item_not_found":      "Cart item not found",
		"error.cart_busy":                "Your cart is being updated, please retry",
		"error.quantity_invalid":         "Quantity must be between 1 and 1000",
		"error.box_type_not_found":       "Box type not found or unavailable",
		"error.box_type_invalid":         "Box type name and price are required",
		"error.discount_invalid":         "Discount code is invalid",
		"error.discount_not_found":       "Discount code not found",
		"error.discount_inactive":        "Discount code is inactive",
		"error.discount_not_started":     "Discount code is not active yet",
		"error.discount_expired":         "Discount code has expired",
		"error.discount_used":            "You have already used this discount code",
		"error.discount_code_exists":     "Discount code already exists",
		"error.discount_code_required":   "Discount code is required",
		"error.discount_value_invalid":   "Discount value is out of range",
		"error.discount_period_invalid":  "Discount start date must be before the end date",
		"error.customer_not_found":       "Customer not found",
		"error.order_not_found":          "Order not found",
		"error.order_forbidden":          "This order does not belong to you",
		"error.order_status_invalid":     "The order status does not allow this operation",
		"error.order_already_paid":       "The order has already been paid",
		"error.delivery_method_invalid":  "Invalid delivery method",
		"error.payment_method_invalid":   "Invalid payment method",
		"error.recipient_required":       "Recipient name, phone and address are required",
		"error.payment_method_mismatch":  "This order is not paid online",
		"error.payment_gateway_disabled": "Online payment is not available",
		"error.payment_gateway_failed":   "Failed to create the payment link, please retry",
		"error.subscription_start_past":  "Start date cannot be in the past",
		"error.subscription_duration":    "Subscription duration is out of range",
		"error.subscription_days":        "Choose two different delivery days",
		"error.subscription_slot":        "Delivery slot must be 1 or 2",
		"error.subscription_not_found":   "Subscription not found",
		"error.subscription_exists":      "You already have an active subscription for this box",
		"error.subscription_inactive":    "The subscription is not active",
		"error.schedule_not_found":       "Delivery schedule not found",
		"error.rating_invalid":           "Rating must be between 1 and 5",
		"error.review_not_allowed":       "Only completed orders can be reviewed",
		"error.review_exists":            "You have already reviewed this box",
		"error.review_not_found":         "Review not found",
		"error.subscription_forbidden":   "This subscription does not belong to you",
		"error.delivery_done":            "This delivery has already been completed",
		"error.payment_link_busy":        "A payment link is being created, please retry",
		"error.webhook_signature":        "Invalid webhook signature",
		"error.webhook_payload":          "Invalid webhook payload",
		"error.webhook_amount":           "Paid amount does not cover the order",
		"error.ai_invalid_input":         "Please describe at least one ingredient or occasion",
		"error.ai_unavailable":           "Generation service is unavailable",
		"error.rate_limited":             "Too many attempts, please retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiting is temporarily unavailable",
		"error.auth_header_missing":      "Missing Authorization header",
		"error.auth_header_invalid":      "Invalid Authorization header",
		"error.login_too_many":           "Too many sign-in attempts, please retry in %d seconds",
		"error.checkout_too_many":        "Too many checkout attempts, please retry in %d seconds",
		"error.payment_link_too_many":    "Too many payment link requests, please retry in %d seconds",
		"error.policy_invalid":           "Role, object and action are required",
		"error.order_target_status_invalid": "Target status must be Processing, Completed or Cancelled",
		"error.order_ids_required":          "Select at least one order",

		"order.status.cart":       "Cart",
		"order.status.pending":    "Pending",
		"order.status.processing": "Processing",
		"order.status.completed":  "Completed",
		"order.status.cancelled":  "Cancelled",

		"email.order_confirmation.subject":  "Order %s received",
		"email.order_confirmation.body":     "Hi %s,\n\nThanks for your order %s.\nItems:\n%s\nTotal: %s\nAmount due: %s\nPayment method: %s\nDelivery method: %s\n\nWe will let you know when it ships.",
		"email.order_status.subject":        "Order status updated: %s",
		"email.order_status.body":           "Order No: %s\nStatus: %s\nAmount: %s",
		"email.order_status.body_cancelled": "The order has been cancelled.\nOrder No: %s\nAmount: %s",
		"email.order_status.body_completed": "Your order has been delivered. Enjoy!\nOrder No: %s\nAmount: %s",
		"email.admin_notice.subject":        "New order %s",
		"email.admin_notice.body":           "A new order was placed.\nOrder No: %s\nCustomer: %s (%s)\nBoxes: %d\nAmount: %s\nPayment method: %s",
		"email.high_value.subject":          "High value order %s",
		"email.high_value.body":             "Order %s exceeds the alert threshold.\nAmount: %s\nThreshold: %s\nCustomer: %s",
	},
	LocaleVI: {
		"error.bad_request":         "Yêu cầu không hợp lệ",
		"error.unauthorized":        "Vui lòng đăng nhập",
		"error.forbidden":           "Bạn không có quyền thực hiện thao tác này",
		"error.not_found":           "Không tìm thấy dữ liệu",
		"error.too_many_requests":   "Quá nhiều yêu cầu, vui lòng thử lại sau",
		"error.internal":            "Lỗi máy chủ",
		"error.credentials_invalid": "Email hoặc mật khẩu không đúng",
		"error.cart_empty":          "Giỏ hàng trống",
		"error.quantity_invalid":    "Số lượng phải từ 1 đến 1000",
		"error.box_type_not_found":  "Không tìm thấy loại hộp",
		"error.discount_invalid":    "Mã giảm giá không hợp lệ",
		"error.discount_expired":    "Mã giảm giá đã hết hạn",
		"error.discount_used":       "Bạn đã sử dụng mã giảm giá này",
		"error.order_not_found":     "Không tìm thấy đơn hàng",
		"error.order_forbidden":     "Đơn hàng không thuộc về bạn",
		"error.subscription_exists": "Bạn đã có gói đăng ký cho loại hộp này",

		"order.status.pending":    "Chờ xử lý",
		"order.status.processing": "Đang xử lý",
		"order.status.completed":  "Hoàn thành",
		"order.status.cancelled":  "Đã hủy",

		"email.order_confirmation.subject": "Đã nhận đơn hàng %s",
		"email.order_status.subject":       "Cập nhật trạng thái đơn hàng: %s",
	},
	LocaleZH: {
		"error.bad_request":         "请求参数错误",
		"error.unauthorized":        "请先登录",
		"error.forbidden":           "无权执行该操作",
		"error.not_found":           "资源不存在",
		"error.too_many_requests":   "请求过于频繁，请稍后再试",
		"error.internal":            "服务器内部错误",
		"error.credentials_invalid": "邮箱或密码错误",
		"error.cart_empty":          "购物车为空",
		"error.quantity_invalid":    "数量需在 1 到 1000 之间",
		"error.box_type_not_found":  "盒子品类不存在或已下架",
		"error.discount_invalid":    "折扣码无效",
		"error.discount_expired":    "折扣码已过期",
		"error.discount_used":       "您已使用过该折扣码",
		"error.order_not_found":     "订单不存在",
		"error.order_forbidden":     "无权访问该订单",
		"error.subscription_exists": "您已订阅该盒子",

		"order.status.pending":    "待处理",
		"order.status.processing": "处理中",
		"order.status.completed":  "已完成",
		"order.status.cancelled":  "已取消",

		"email.order_confirmation.subject": "订单 %s 已提交",
		"email.order_status.subject":       "订单状态更新：%s",
	},
}
