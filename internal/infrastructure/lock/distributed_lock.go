package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁
// ============================================================================
//
// 同一用户的并发购买请求先在这里排队，减少数据库事务冲突。
// 正确性不依赖这把锁：余额/钻石的条件更新和唯一索引才是最终防线，
// 锁只是把同一用户的请求串起来，避免大量事务在行锁上互相等待。
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
// 释放锁：Lua 脚本保证"检查+删除"原子执行
//
// ============================================================================

var ErrLockFailed = errors.New("获取分布式锁失败")

// Locker 账本服务依赖的最小锁接口
type Locker interface {
	Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error
	Unlock(ctx context.Context) error
}

// DistributedLock 基于 Redis 的分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
// Lua 脚本先校验 value 再删除：锁超时易主后，原持有者不会误删新持有者的锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// ============================================================================
// 按用户维度的账本锁
// ============================================================================

// Factory 按用户发锁；redis 未启用时发空锁
type Factory struct {
	client *redis.Client
}

func NewFactory(client *redis.Client) *Factory {
	return &Factory{client: client}
}

// ForUser 同一用户共用一把锁，不同用户互不影响
// token 填调用方的流水号，便于排查锁被谁持有
func (f *Factory) ForUser(userID, token string) Locker {
	if f.client == nil {
		return NoopLocker{}
	}
	key := fmt.Sprintf("ledger:lock:user:%s", userID)
	return NewDistributedLock(f.client, key, token, 30*time.Second)
}

// NoopLocker 空锁，redis 未启用（本地开发、单测）时使用
type NoopLocker struct{}

func (NoopLocker) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	return nil
}

func (NoopLocker) Unlock(ctx context.Context) error { return nil }
