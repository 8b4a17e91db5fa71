package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/payment/payos"
	"github.com/boxmart-next/internal/repository"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const (
	defaultPaymentExpireMinutes = 15
	payosOrderKeyGrace          = 24 * time.Hour
	paymentLinkLockTTL          = 30 * time.Second
	paymentLinkLockWait         = 5 * time.Second
)

// PaymentService PayOS 在线支付服务
type PaymentService struct {
	orderRepo     repository.OrderRepository
	webhookRepo   repository.PaymentWebhookEventRepository
	orderService  *OrderService
	store         cache.Store
	cfg           payos.Config
	expireMinutes int
	now           func() time.Time
	createLink    func(ctx context.Context, cfg *payos.Config, input payos.CreateInput) (*payos.CreateResult, error)
	getLink       func(ctx context.Context, cfg *payos.Config, id string) (*payos.PaymentLinkInfo, error)
	cancelLink    func(ctx context.Context, cfg *payos.Config, id, reason string) (*payos.PaymentLinkInfo, error)
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	orderRepo repository.OrderRepository,
	webhookRepo repository.PaymentWebhookEventRepository,
	orderService *OrderService,
	store cache.Store,
	payCfg config.PayOSConfig,
	orderCfg config.OrderConfig,
) *PaymentService {
	cfg := payos.Config{
		BaseURL:              payCfg.BaseURL,
		ClientID:             payCfg.ClientID,
		APIKey:               payCfg.APIKey,
		ChecksumKey:          payCfg.ChecksumKey,
		ReturnURL:            payCfg.ReturnURL,
		CancelURL:            payCfg.CancelURL,
		Timeout:              time.Duration(payCfg.TimeoutSeconds) * time.Second,
		DescriptionMaxLength: payCfg.DescriptionMaxLength,
	}
	cfg.Normalize()
	expireMinutes := orderCfg.PaymentExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = defaultPaymentExpireMinutes
	}
	return &PaymentService{
		orderRepo:     orderRepo,
		webhookRepo:   webhookRepo,
		orderService:  orderService,
		store:         store,
		cfg:           cfg,
		expireMinutes: expireMinutes,
		now:           time.Now,
		createLink:    payos.CreatePaymentLink,
		getLink:       payos.GetPaymentLink,
		cancelLink:    payos.CancelPaymentLink,
	}
}

// PaymentLinkResult 支付链接结果
type PaymentLinkResult struct {
	OrderID       uint      `json:"order_id"`
	OrderNo       string    `json:"order_no"`
	OrderCode     int64     `json:"order_code"`
	PaymentLinkID string    `json:"payment_link_id"`
	CheckoutURL   string    `json:"checkout_url"`
	Amount        int64     `json:"amount"`
	ExpiresAt     time.Time `json:"expires_at"`
	Reused        bool      `json:"reused"`
}

// WebhookResult 回调处理结果
type WebhookResult struct {
	OrderID   uint   `json:"order_id"`
	OrderCode int64  `json:"order_code"`
	Status    string `json:"status"`
	Changed   bool   `json:"changed"`
	Duplicate bool   `json:"duplicate"`
	Ignored   bool   `json:"ignored"`
}

// Configured 网关配置是否完整
func (s *PaymentService) Configured() bool {
	return payos.ValidateConfig(&s.cfg) == nil
}

// CreatePaymentLink 为待支付订单创建（或复用未过期的）PayOS 支付链接
func (s *PaymentService) CreatePaymentLink(ctx context.Context, userID, orderID uint) (*PaymentLinkResult, error) {
	if !s.Configured() {
		return nil, ErrPaymentGatewayNotConfigured
	}
	unlock, err := cache.Lock(ctx, s.store, paymentLinkLockKey(orderID), paymentLinkLockTTL, paymentLinkLockWait)
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return nil, ErrPaymentLinkBusy
		}
		return nil, err
	}
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := checkPayableOrder(order, userID); err != nil {
		return nil, err
	}

	now := s.now()
	if order.CheckoutURL != "" && order.PaymentLinkID != "" && order.LinkExpiresAt != nil && order.LinkExpiresAt.After(now) {
		return &PaymentLinkResult{
			OrderID:       order.ID,
			OrderNo:       order.OrderNo,
			OrderCode:     order.PayOSOrderCode,
			PaymentLinkID: order.PaymentLinkID,
			CheckoutURL:   order.CheckoutURL,
			Amount:        order.FinalPrice.IntAmount(),
			ExpiresAt:     *order.LinkExpiresAt,
			Reused:        true,
		}, nil
	}

	orderCode := payos.GenerateOrderCode()
	expiresAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)
	items := lo.Map(order.Items, func(item models.OrderItem, _ int) payos.Item {
		return payos.Item{Name: item.BoxName, Quantity: int64(item.Quantity), Price: item.UnitPrice.IntAmount()}
	})
	result, err := s.createLink(ctx, &s.cfg, payos.CreateInput{
		OrderCode:      orderCode,
		Amount:         order.FinalPrice.IntAmount(),
		Description:    order.OrderNo,
		Items:          items,
		BuyerName:      order.RecipientName,
		BuyerEmail:     order.Email,
		BuyerPhone:     order.Phone,
		ExpiredAt:      expiresAt,
		IdempotencyKey: fmt.Sprintf("order-%d-%d", order.ID, orderCode),
	})
	if err != nil {
		logger.Warnw("payos_create_link_failed", "order_id", order.ID, "order_code", orderCode, "error", err)
		if errors.Is(err, payos.ErrConfigInvalid) {
			return nil, ErrPaymentGatewayNotConfigured
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}

	if err := s.orderRepo.UpdateFields(order.ID, map[string]interface{}{
		"payos_order_code": orderCode,
		"payment_link_id":  result.PaymentLinkID,
		"checkout_url":     result.CheckoutURL,
		"link_expires_at":  expiresAt,
		"updated_at":       now,
	}); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, payosOrderKey(orderCode), strconv.FormatUint(uint64(order.ID), 10),
		time.Duration(s.expireMinutes)*time.Minute+payosOrderKeyGrace); err != nil {
		logger.Warnw("payos_order_code_cache_failed", "order_id", order.ID, "order_code", orderCode, "error", err)
	}
	logger.Infow("payos_link_created",
		"order_id", order.ID,
		"order_code", orderCode,
		"payment_link_id", result.PaymentLinkID,
	)
	return &PaymentLinkResult{
		OrderID:       order.ID,
		OrderNo:       order.OrderNo,
		OrderCode:     orderCode,
		PaymentLinkID: result.PaymentLinkID,
		CheckoutURL:   result.CheckoutURL,
		Amount:        order.FinalPrice.IntAmount(),
		ExpiresAt:     expiresAt,
	}, nil
}

// QueryPaymentLink 查询订单当前支付链接在网关侧的状态
func (s *PaymentService) QueryPaymentLink(ctx context.Context, userID, orderID uint) (*payos.PaymentLinkInfo, error) {
	if !s.Configured() {
		return nil, ErrPaymentGatewayNotConfigured
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.Status == constants.OrderStatusCart {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	if order.PaymentLinkID == "" {
		return nil, ErrOrderNotFound
	}
	info, err := s.getLink(ctx, &s.cfg, order.PaymentLinkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}
	return info, nil
}

// CancelOrderPaymentLink 取消订单的支付链接（订单取消时调用）
func (s *PaymentService) CancelOrderPaymentLink(ctx context.Context, order *models.Order) error {
	if order == nil || order.PaymentLinkID == "" || !s.Configured() {
		return nil
	}
	if _, err := s.cancelLink(ctx, &s.cfg, order.PaymentLinkID, "order cancelled"); err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}
	return nil
}

// HandleWebhook 验签并处理 PayOS 回调
// 同一事件只处理一次；未知状态记录日志后忽略。
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, headerSignature string) (*WebhookResult, error) {
	data, err := payos.VerifyWebhook(&s.cfg, body, headerSignature)
	if err != nil {
		if errors.Is(err, payos.ErrSignatureInvalid) {
			logger.Warnw("payos_webhook_signature_invalid", "body_size", len(body))
			return nil, ErrWebhookSignatureInvalid
		}
		if errors.Is(err, payos.ErrConfigInvalid) {
			return nil, ErrPaymentGatewayNotConfigured
		}
		logger.Warnw("payos_webhook_payload_invalid", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWebhookPayloadInvalid, err)
	}
	if data.OrderCode <= 0 {
		return nil, ErrWebhookPayloadInvalid
	}

	result := &WebhookResult{OrderCode: data.OrderCode, Status: data.Status}
	switch data.Status {
	case payos.StatusPaid, payos.StatusCancelled, payos.StatusExpired:
	default:
		logger.Infow("payos_webhook_status_ignored", "order_code", data.OrderCode, "status", data.Status, "code", data.Code)
		result.Ignored = true
		return result, nil
	}

	orderID, err := s.resolveOrderID(ctx, data.OrderCode)
	if err != nil {
		return nil, err
	}
	if orderID == 0 {
		logger.Warnw("payos_webhook_order_not_found", "order_code", data.OrderCode, "status", data.Status)
		return nil, ErrWebhookOrderNotFound
	}
	result.OrderID = orderID

	var changedOrder *models.Order
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrWebhookOrderNotFound
		}
		webhookRepo := s.webhookRepo.WithTx(tx)
		eventKey := webhookEventKey(data)
		existing, err := webhookRepo.GetByEventKey(eventKey)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Duplicate = true
			return nil
		}

		changed, err := s.applyWebhook(tx, order, data)
		if err != nil {
			return err
		}
		if _, err := webhookRepo.Record(&models.PaymentWebhookEvent{
			Provider:    constants.WebhookProviderPayOS,
			EventKey:    eventKey,
			OrderCode:   data.OrderCode,
			Status:      data.Status,
			Payload:     string(body),
			ProcessedAt: s.now(),
		}); err != nil {
			return err
		}
		result.Changed = changed
		if changed {
			changedOrder = order
		}
		return nil
	})
	if err != nil {
		logger.Errorw("payos_webhook_process_failed",
			"order_id", orderID,
			"order_code", data.OrderCode,
			"status", data.Status,
			"error", err,
		)
		return nil, err
	}

	if result.Duplicate {
		logger.Infow("payos_webhook_duplicate", "order_id", orderID, "order_code", data.OrderCode, "status", data.Status)
		return result, nil
	}
	logger.Infow("payos_webhook_processed",
		"order_id", orderID,
		"order_code", data.OrderCode,
		"status", data.Status,
		"changed", result.Changed,
	)
	if changedOrder != nil && data.Status != payos.StatusExpired {
		s.orderService.NotifyStatusChanged(ctx, changedOrder)
	}
	return result, nil
}

// applyWebhook 按回调状态更新已加锁的订单
func (s *PaymentService) applyWebhook(tx *gorm.DB, order *models.Order, data *payos.WebhookData) (bool, error) {
	switch data.Status {
	case payos.StatusPaid:
		if order.IsPaid {
			return false, nil
		}
		if data.Amount < order.FinalPrice.IntAmount() {
			logger.Warnw("payos_webhook_amount_mismatch",
				"order_id", order.ID,
				"paid_amount", data.Amount,
				"final_price", order.FinalPrice.String(),
			)
			return false, ErrWebhookAmountMismatch
		}
		if order.Status != constants.OrderStatusPending {
			logger.Warnw("payos_webhook_paid_unexpected_status", "order_id", order.ID, "status", order.Status)
			return false, nil
		}
		if err := s.orderService.MarkPaidTx(tx, order, s.now(), 0); err != nil {
			return false, err
		}
		return true, nil
	case payos.StatusCancelled:
		return s.orderService.CancelUnpaidTx(tx, order, s.now())
	case payos.StatusExpired:
		if order.IsPaid || order.PayOSOrderCode != data.OrderCode {
			return false, nil
		}
		if err := s.orderRepo.WithTx(tx).UpdateFields(order.ID, map[string]interface{}{
			"payment_link_id": "",
			"checkout_url":    "",
			"link_expires_at": nil,
			"updated_at":      s.now(),
		}); err != nil {
			return false, err
		}
		order.PaymentLinkID = ""
		order.CheckoutURL = ""
		order.LinkExpiresAt = nil
		return true, nil
	}
	return false, nil
}

// resolveOrderID 先查 TTL 存储中的 orderCode 映射，再回落到数据库
func (s *PaymentService) resolveOrderID(ctx context.Context, orderCode int64) (uint, error) {
	if raw, ok, err := s.store.Get(ctx, payosOrderKey(orderCode)); err != nil {
		logger.Warnw("payos_order_code_cache_get_failed", "order_code", orderCode, "error", err)
	} else if ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			return uint(id), nil
		}
	}
	order, err := s.orderRepo.GetByPayOSOrderCode(orderCode)
	if err != nil {
		return 0, err
	}
	if order == nil {
		return 0, nil
	}
	return order.ID, nil
}

func checkPayableOrder(order *models.Order, userID uint) error {
	if order == nil || order.Status == constants.OrderStatusCart {
		return ErrOrderNotFound
	}
	if order.UserID != userID {
		return ErrOrderForbidden
	}
	if order.PaymentMethod != constants.PaymentMethodPayOS {
		return ErrPaymentMethodMismatch
	}
	if order.IsPaid {
		return ErrOrderAlreadyPaid
	}
	if order.Status != constants.OrderStatusPending {
		return ErrOrderStatusInvalid
	}
	return nil
}

func webhookEventKey(data *payos.WebhookData) string {
	return fmt.Sprintf("%s:%d:%s:%s", constants.WebhookProviderPayOS, data.OrderCode, data.Status, data.Reference)
}

func payosOrderKey(orderCode int64) string {
	return fmt.Sprintf("payos:order:%d", orderCode)
}

func paymentLinkLockKey(orderID uint) string {
	return fmt.Sprintf("payment:link:lock:%d", orderID)
}
