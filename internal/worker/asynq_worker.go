package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/queue"
	"github.com/boxmart-next/internal/service"

	"github.com/hibiken/asynq"
)

// OrderMailer 订单通知邮件发送
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, orderID uint) error
	SendAdminNotice(ctx context.Context, orderID uint) error
	SendHighValueAlert(ctx context.Context, orderID uint) error
	SendOrderStatusEmail(ctx context.Context, orderID uint, status string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	mailer OrderMailer
}

// NewConsumer 创建消费者
func NewConsumer(mailer OrderMailer) *Consumer {
	return &Consumer{mailer: mailer}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmationEmail, c.handleOrderConfirmation)
	mux.HandleFunc(queue.TaskOrderAdminNotice, c.handleOrderAdminNotice)
	mux.HandleFunc(queue.TaskOrderHighValueAlert, c.handleOrderHighValueAlert)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleOrderConfirmation(ctx context.Context, task *asynq.Task) error {
	return c.handleOrderNotification(ctx, task, "worker_order_confirmation", c.mailer.SendOrderConfirmation)
}

func (c *Consumer) handleOrderAdminNotice(ctx context.Context, task *asynq.Task) error {
	return c.handleOrderNotification(ctx, task, "worker_order_admin_notice", c.mailer.SendAdminNotice)
}

func (c *Consumer) handleOrderHighValueAlert(ctx context.Context, task *asynq.Task) error {
	return c.handleOrderNotification(ctx, task, "worker_order_high_value_alert", c.mailer.SendHighValueAlert)
}

func (c *Consumer) handleOrderNotification(ctx context.Context, task *asynq.Task, event string, send func(context.Context, uint) error) error {
	if task == nil {
		logger.Debugw(event+"_skip_nil_task")
		return nil
	}
	var payload queue.OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw(event+"_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		logger.Debugw(event+"_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	return settle(event, payload.OrderID, send(ctx, payload.OrderID))
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	const event = "worker_order_status_email"
	if task == nil {
		logger.Debugw(event + "_skip_nil_task")
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw(event+"_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		logger.Debugw(event+"_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	return settle(event, payload.OrderID, c.mailer.SendOrderStatusEmail(ctx, payload.OrderID, payload.Status))
}

// settle 订单已不存在或邮件未启用时不再重试，其余错误交给 asynq 重试
func settle(event string, orderID uint, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrOrderNotFound):
		logger.Debugw(event+"_skip_order_not_found", "order_id", orderID)
		return nil
	case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
		logger.Debugw(event+"_skip_email_disabled", "order_id", orderID)
		return nil
	case errors.Is(err, service.ErrEmailRecipientRejected):
		logger.Warnw(event+"_recipient_rejected", "order_id", orderID, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		logger.Warnw(event+"_failed", "order_id", orderID, "error", err)
		return err
	}
}
