package queue

import (
	"encoding/json"
	"testing"

	"github.com/boxmart-next/internal/config"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled config should produce a disabled client")
	}
	if err := client.EnqueueOrderConfirmationEmail(OrderNotificationPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("default concurrency want 10 got %d", cfg.Concurrency)
	}
	if cfg.Queues[CriticalQueue] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("critical queue should outweigh default: %+v", cfg.Queues)
	}
}

func TestOrderNotificationTaskPayload(t *testing.T) {
	task, err := NewOrderNotificationTask(TaskOrderHighValueAlert, OrderNotificationPayload{OrderID: 42})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskOrderHighValueAlert {
		t.Fatalf("task type mismatch: %s", task.Type())
	}
	var payload OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.OrderID != 42 {
		t.Fatalf("payload mismatch: %+v err=%v", payload, err)
	}
}
