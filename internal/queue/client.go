package queue

import (
	"fmt"
	"strings"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列名称
	CriticalQueue = constants.QueueCritical
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
	maxRetry     int
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	return &Client{
		client:       asynq.NewClient(buildRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: DefaultQueue,
		maxRetry:     cfg.MaxRetry,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderConfirmationEmail 推送下单确认邮件任务
func (c *Client) EnqueueOrderConfirmationEmail(payload OrderNotificationPayload) error {
	return c.enqueueOrderNotification(TaskOrderConfirmationEmail, payload, c.defaultQueue)
}

// EnqueueOrderAdminNotice 推送新订单管理员通知任务
func (c *Client) EnqueueOrderAdminNotice(payload OrderNotificationPayload) error {
	return c.enqueueOrderNotification(TaskOrderAdminNotice, payload, c.defaultQueue)
}

// EnqueueOrderHighValueAlert 推送大额订单告警任务
func (c *Client) EnqueueOrderHighValueAlert(payload OrderNotificationPayload) error {
	return c.enqueueOrderNotification(TaskOrderHighValueAlert, payload, CriticalQueue)
}

// EnqueueOrderStatusEmail 推送订单状态邮件任务
func (c *Client) EnqueueOrderStatusEmail(payload OrderStatusEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, c.options(c.defaultQueue, opts...)...)
	return err
}

func (c *Client) enqueueOrderNotification(taskType string, payload OrderNotificationPayload, queueName string) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderNotificationTask(taskType, payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, c.options(queueName)...)
	return err
}

func (c *Client) options(queueName string, extra ...asynq.Option) []asynq.Option {
	options := []asynq.Option{asynq.Queue(queueName)}
	if c.maxRetry > 0 {
		options = append(options, asynq.MaxRetry(c.maxRetry))
	}
	return append(options, extra...)
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{CriticalQueue: 6, DefaultQueue: 3}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
