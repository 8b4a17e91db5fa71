package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/boxmart-next/internal/config"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// HTTPTimeouts HTTP 服务端超时
// 写超时需覆盖结算与创建支付链接时对 PayOS 的同步调用
type HTTPTimeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// HTTPTimeoutsFromConfig 从服务配置读取超时，未配置项使用默认值
func HTTPTimeoutsFromConfig(cfg config.ServerConfig) HTTPTimeouts {
	return HTTPTimeouts{
		ReadHeader: secondsOr(cfg.ReadHeaderTimeoutSeconds, defaultReadHeaderTimeout),
		Read:       secondsOr(cfg.ReadTimeoutSeconds, defaultReadTimeout),
		Write:      secondsOr(cfg.WriteTimeoutSeconds, defaultWriteTimeout),
		Idle:       secondsOr(cfg.IdleTimeoutSeconds, defaultIdleTimeout),
	}
}

func (t HTTPTimeouts) withDefaults() HTTPTimeouts {
	if t.ReadHeader <= 0 {
		t.ReadHeader = defaultReadHeaderTimeout
	}
	if t.Read <= 0 {
		t.Read = defaultReadTimeout
	}
	if t.Write <= 0 {
		t.Write = defaultWriteTimeout
	}
	if t.Idle <= 0 {
		t.Idle = defaultIdleTimeout
	}
	return t
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// HTTPService API 服务（前台、后台与 PayOS 回调共用）
type HTTPService struct {
	name   string
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler, timeouts HTTPTimeouts) *HTTPService {
	timeouts = timeouts.withDefaults()
	return &HTTPService{
		name: "api",
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			ReadTimeout:       timeouts.Read,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
		},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "api"
	}
	return s.name
}

// Start 启动服务，ctx 取消由 Runner 调用 Stop 处理
func (s *HTTPService) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭，等待进行中的请求（含 webhook 事务）完成
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Drainer 停机前需要等待完成的后台任务
type Drainer interface {
	Wait()
}

// DrainService 停机时等待后台任务（如未走队列的通知邮件）发送完毕
type DrainService struct {
	name    string
	drainer Drainer
}

// NewDrainService 创建停机等待服务
func NewDrainService(name string, drainer Drainer) *DrainService {
	return &DrainService{name: name, drainer: drainer}
}

// Name 服务名称
func (s *DrainService) Name() string {
	return s.name
}

// Start 阻塞到停机
func (s *DrainService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Stop 等待后台任务完成或超时
func (s *DrainService) Stop(ctx context.Context) error {
	if s.drainer == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.drainer.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
