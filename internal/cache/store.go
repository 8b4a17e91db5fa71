package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrLockTimeout 获取锁超时
var ErrLockTimeout = errors.New("cache lock timeout")

// Store 带 TTL 语义的键值存储
// 替代进程内全局 map，多实例部署时由 Redis 实现共享状态。
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
	// DelIfEqual 仅当当前值等于 value 时删除（用于释放自己持有的锁）
	DelIfEqual(ctx context.Context, key, value string) error
}

// GetJSON 读取 JSON 值
func GetJSON(ctx context.Context, store Store, key string, dest interface{}) (bool, error) {
	if store == nil {
		return false, nil
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 值
func SetJSON(ctx context.Context, store Store, key string, value interface{}, ttl time.Duration) error {
	if store == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(payload), ttl)
}
