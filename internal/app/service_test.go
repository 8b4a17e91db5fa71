package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boxmart-next/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeService) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllWhenOneServiceFails(t *testing.T) {
	api := &fakeService{name: "api", block: true}
	worker := &fakeService{name: "worker", startErr: errors.New("redis unreachable")}

	err := NewRunner(api, worker).Run(context.Background(), time.Second, nil)
	if err == nil || !strings.Contains(err.Error(), "service worker") {
		t.Fatalf("want error naming the failed service, got %v", err)
	}
	if !api.wasStopped() || !worker.wasStopped() {
		t.Fatalf("every service should be stopped")
	}
}

func TestRunnerCancelledContextIsCleanExit(t *testing.T) {
	api := &fakeService{name: "api", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRunner(api).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !api.wasStopped() {
		t.Fatalf("service should be stopped")
	}
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("runner without services should fail")
	}
}

func TestHTTPTimeoutsFromConfig(t *testing.T) {
	timeouts := HTTPTimeoutsFromConfig(config.ServerConfig{WriteTimeoutSeconds: 45})
	if timeouts.Write != 45*time.Second {
		t.Fatalf("write timeout want 45s got %v", timeouts.Write)
	}
	if timeouts.ReadHeader != defaultReadHeaderTimeout || timeouts.Idle != defaultIdleTimeout {
		t.Fatalf("unset timeouts should use defaults, got %+v", timeouts)
	}

	svc := NewHTTPService(":0", nil, HTTPTimeouts{})
	if svc.server.ReadHeaderTimeout != defaultReadHeaderTimeout || svc.server.WriteTimeout != defaultWriteTimeout {
		t.Fatalf("zero timeouts should fall back to defaults, got %+v", svc.server)
	}
	if svc.Name() != "api" {
		t.Fatalf("unexpected service name %s", svc.Name())
	}
}

type blockingDrainer struct {
	release chan struct{}
}

func (d blockingDrainer) Wait() { <-d.release }

func TestDrainServiceWaitsUntilDeadline(t *testing.T) {
	drainer := blockingDrainer{release: make(chan struct{})}
	svc := NewDrainService("notification", drainer)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("pending work should hit the deadline, got %v", err)
	}

	close(drainer.release)
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("drained work should stop cleanly, got %v", err)
	}
	if err := NewDrainService("none", nil).Stop(context.Background()); err != nil {
		t.Fatalf("nil drainer should be a no-op, got %v", err)
	}
}
