package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const lockRetryInterval = 25 * time.Millisecond

// Lock 基于 SetNX 的互斥锁，等待直到获取成功、超时或 ctx 结束
// 返回的 unlock 只会释放自己持有的锁。
func Lock(ctx context.Context, store Store, key string, ttl, wait time.Duration) (func(), error) {
	if store == nil {
		return func() {}, nil
	}
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		ok, err := store.SetNX(ctx, key, token, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = store.DelIfEqual(context.Background(), key, token)
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
