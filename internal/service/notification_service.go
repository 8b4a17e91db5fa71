package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/i18n"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/queue"
	"github.com/boxmart-next/internal/repository"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// OrderNotifier 订单事件通知，实现方必须吞掉自身错误
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order)
}

// NotificationService 订单通知服务
// 队列可用时投递 asynq 任务，否则在后台协程中直接发送；失败只记录日志。
type NotificationService struct {
	inflight sync.WaitGroup

	orderRepo          repository.OrderRepository
	userRepo           repository.UserRepository
	emailService       *EmailService
	queueClient        *queue.Client
	adminEmails        []string
	highValueThreshold decimal.Decimal
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	emailService *EmailService,
	queueClient *queue.Client,
	notifyCfg config.NotificationConfig,
	orderCfg config.OrderConfig,
) *NotificationService {
	return &NotificationService{
		orderRepo:          orderRepo,
		userRepo:           userRepo,
		emailService:       emailService,
		queueClient:        queueClient,
		adminEmails:        notifyCfg.AdminEmails,
		highValueThreshold: decimal.NewFromFloat(orderCfg.HighValueThreshold),
	}
}

// IsHighValue 订单应付金额是否超过告警阈值
func (s *NotificationService) IsHighValue(order *models.Order) bool {
	if order == nil || !s.highValueThreshold.IsPositive() {
		return false
	}
	return order.FinalPrice.Decimal.GreaterThan(s.highValueThreshold)
}

// OrderPlaced 下单后通知买家与管理员
func (s *NotificationService) OrderPlaced(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	payload := queue.OrderNotificationPayload{OrderID: order.ID}
	highValue := s.IsHighValue(order)

	if s.queueClient.Enabled() {
		s.logFailure("order_confirmation_enqueue_failed", order.ID, s.queueClient.EnqueueOrderConfirmationEmail(payload))
		s.logFailure("order_admin_notice_enqueue_failed", order.ID, s.queueClient.EnqueueOrderAdminNotice(payload))
		if highValue {
			s.logFailure("order_high_value_enqueue_failed", order.ID, s.queueClient.EnqueueOrderHighValueAlert(payload))
		}
		return
	}

	s.sendInline(ctx, func(ctx context.Context) {
		s.logFailure("order_confirmation_send_failed", order.ID, s.SendOrderConfirmation(ctx, order.ID))
		s.logFailure("order_admin_notice_send_failed", order.ID, s.SendAdminNotice(ctx, order.ID))
		if highValue {
			s.logFailure("order_high_value_send_failed", order.ID, s.SendHighValueAlert(ctx, order.ID))
		}
	})
}

// OrderStatusChanged 订单状态变更后通知买家
func (s *NotificationService) OrderStatusChanged(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{OrderID: order.ID, Status: order.Status})
		s.logFailure("order_status_email_enqueue_failed", order.ID, err)
		return
	}
	orderID, status := order.ID, order.Status
	s.sendInline(ctx, func(ctx context.Context) {
		s.logFailure("order_status_email_send_failed", orderID, s.SendOrderStatusEmail(ctx, orderID, status))
	})
}

// sendInline 无队列时在后台发送，不阻塞请求；上下文脱离请求生命周期
func (s *NotificationService) sendInline(ctx context.Context, send func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("order_notification_panic", "panic", r)
			}
		}()
		send(detached)
	}()
}

// Wait 等待后台发送中的通知完成（停机与测试使用）
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

// SendOrderConfirmation 发送下单确认邮件
func (s *NotificationService) SendOrderConfirmation(_ context.Context, orderID uint) error {
	order, user, err := s.loadOrderWithUser(orderID)
	if err != nil {
		return err
	}
	to := strings.TrimSpace(order.Email)
	name := ""
	locale := i18n.DefaultLocale
	if user != nil {
		name = user.DisplayName
		locale = user.Locale
		if to == "" {
			to = user.Email
		}
	}
	if to == "" {
		return nil
	}
	return s.emailService.SendOrderConfirmation(to, order, name, locale)
}

// SendAdminNotice 发送新订单通知给管理员
func (s *NotificationService) SendAdminNotice(_ context.Context, orderID uint) error {
	order, user, err := s.loadOrderWithUser(orderID)
	if err != nil {
		return err
	}
	customer, email := order.RecipientName, order.Email
	if user != nil {
		customer, email = lo.Ternary(user.DisplayName != "", user.DisplayName, customer), user.Email
	}
	subject := i18n.Sprintf(i18n.DefaultLocale, "email.admin_notice.subject", order.OrderNo)
	body := i18n.Sprintf(i18n.DefaultLocale, "email.admin_notice.body",
		order.OrderNo, customer, email, order.ItemCount(), order.FinalPrice.String(), order.PaymentMethod)
	return s.sendToAdmins(subject, body)
}

// SendHighValueAlert 发送大额订单告警
func (s *NotificationService) SendHighValueAlert(_ context.Context, orderID uint) error {
	order, user, err := s.loadOrderWithUser(orderID)
	if err != nil {
		return err
	}
	customer := order.RecipientName
	if user != nil {
		customer = user.Email
	}
	subject := i18n.Sprintf(i18n.DefaultLocale, "email.high_value.subject", order.OrderNo)
	body := i18n.Sprintf(i18n.DefaultLocale, "email.high_value.body",
		order.OrderNo, order.FinalPrice.String(), s.highValueThreshold.StringFixed(2), customer)
	return s.sendToAdmins(subject, body)
}

// SendOrderStatusEmail 发送订单状态邮件，状态已再次变化时跳过
func (s *NotificationService) SendOrderStatusEmail(_ context.Context, orderID uint, status string) error {
	order, user, err := s.loadOrderWithUser(orderID)
	if err != nil {
		return err
	}
	if status != "" && order.Status != status {
		return nil
	}
	to := strings.TrimSpace(order.Email)
	locale := i18n.DefaultLocale
	if user != nil {
		locale = user.Locale
		if to == "" {
			to = user.Email
		}
	}
	if to == "" {
		return nil
	}
	return s.emailService.SendOrderStatusEmail(to, order, locale)
}

// AdminRecipients 汇总配置的管理员邮箱与管理员账号邮箱
func (s *NotificationService) AdminRecipients() ([]string, error) {
	recipients := lo.Map(s.adminEmails, func(email string, _ int) string {
		return strings.ToLower(strings.TrimSpace(email))
	})
	if s.userRepo != nil {
		admins, err := s.userRepo.ListByRole(constants.UserRoleAdmin)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, lo.Map(admins, func(u models.User, _ int) string {
			return strings.ToLower(strings.TrimSpace(u.Email))
		})...)
	}
	return lo.Uniq(lo.Compact(recipients)), nil
}

func (s *NotificationService) sendToAdmins(subject, body string) error {
	recipients, err := s.AdminRecipients()
	if err != nil {
		return err
	}
	var errs []error
	for _, to := range recipients {
		if err := s.emailService.SendCustomEmail(to, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func (s *NotificationService) loadOrderWithUser(orderID uint) (*models.Order, *models.User, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	user, err := s.userRepo.GetByID(order.UserID)
	if err != nil {
		return nil, nil, err
	}
	return order, user, nil
}

func (s *NotificationService) logFailure(event string, orderID uint, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrEmailServiceDisabled) {
		logger.Debugw(event, "order_id", orderID, "reason", "email_disabled")
		return
	}
	logger.Warnw(event, "order_id", orderID, "error", err)
}
