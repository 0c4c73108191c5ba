// Package redis 提供 Redis 缓存操作的封装
// 本文件实现用户在线状态跟踪
// WebSocket 连接建立时上线，断开时下线，心跳续期；
// 进程崩溃来不及下线时由 TTL 自动过期兜底
package redis

import (
	"context"
	"sync"
	"time"

	"habitlink_server/pkg/constants"
	"habitlink_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// presenceKey 在线状态键前缀，完整键形如 presence_10000000001
const presenceKey = "presence_"

// onlineSetKey 在线用户集合键
const onlineSetKey = "online_users"

// PresenceTracker 在线状态跟踪接口
// 提供 Redis 实现（默认）和内存实现（单测/无 Redis 环境）
type PresenceTracker interface {
	// SetOnline 标记用户上线
	SetOnline(ctx context.Context, uid string) error
	// SetOffline 标记用户下线
	SetOffline(ctx context.Context, uid string) error
	// Refresh 心跳续期
	Refresh(ctx context.Context, uid string) error
	// IsOnline 查询用户是否在线
	IsOnline(ctx context.Context, uid string) (bool, error)
	// FilterOnline 从 uids 中筛出当前在线的用户
	FilterOnline(ctx context.Context, uids []string) ([]string, error)
}

// ==================== Redis 实现 ====================

// redisPresenceTracker 基于 Redis 的在线状态跟踪
// 每个用户一个带 TTL 的状态键，另维护一个在线集合用于枚举；
// 集合成员可能滞留（TTL 只作用于状态键），以状态键为准
type redisPresenceTracker struct{}

// NewRedisPresenceTracker 创建 Redis 在线状态跟踪器
// 调用前必须先执行 redis.Init 或 redis.InitWithClient
func NewRedisPresenceTracker() PresenceTracker {
	return &redisPresenceTracker{}
}

func (t *redisPresenceTracker) ttl() time.Duration {
	return time.Minute * constants.PRESENCE_TTL_MINUTES
}

// SetOnline 标记用户上线
func (t *redisPresenceTracker) SetOnline(ctx context.Context, uid string) error {
	if err := redisClient.SAdd(ctx, onlineSetKey, uid).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis sadd key %s", onlineSetKey)
	}
	return SetKeyEx(ctx, presenceKey+uid, "1", t.ttl())
}

// SetOffline 标记用户下线
func (t *redisPresenceTracker) SetOffline(ctx context.Context, uid string) error {
	if err := redisClient.SRem(ctx, onlineSetKey, uid).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis srem key %s", onlineSetKey)
	}
	return DelKey(ctx, presenceKey+uid)
}

// Refresh 心跳续期，重置状态键 TTL
func (t *redisPresenceTracker) Refresh(ctx context.Context, uid string) error {
	if err := redisClient.Expire(ctx, presenceKey+uid, t.ttl()).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis expire key %s", presenceKey+uid)
	}
	return nil
}

// IsOnline 查询用户是否在线，以状态键存在与否为准
func (t *redisPresenceTracker) IsOnline(ctx context.Context, uid string) (bool, error) {
	value, err := GetKey(ctx, presenceKey+uid)
	if err != nil {
		return false, err
	}
	return value != "", nil
}

// FilterOnline 从 uids 中筛出当前在线的用户
// 使用 Pipeline 批量查询，避免逐个往返
func (t *redisPresenceTracker) FilterOnline(ctx context.Context, uids []string) ([]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	pipe := redisClient.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(uids))
	for _, uid := range uids {
		cmds[uid] = pipe.Exists(ctx, presenceKey+uid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "redis pipeline exists")
	}
	online := make([]string, 0, len(uids))
	for _, uid := range uids {
		if cmds[uid].Val() > 0 {
			online = append(online, uid)
		}
	}
	return online, nil
}

// ==================== 内存实现 ====================

// memoryPresenceTracker 进程内的在线状态跟踪
// 语义与 Redis 实现一致，过期时间惰性判定
type memoryPresenceTracker struct {
	mu       sync.RWMutex
	expireAt map[string]time.Time
}

// NewMemoryPresenceTracker 创建内存在线状态跟踪器
func NewMemoryPresenceTracker() PresenceTracker {
	return &memoryPresenceTracker{
		expireAt: make(map[string]time.Time),
	}
}

func (t *memoryPresenceTracker) SetOnline(ctx context.Context, uid string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expireAt[uid] = time.Now().Add(time.Minute * constants.PRESENCE_TTL_MINUTES)
	return nil
}

func (t *memoryPresenceTracker) SetOffline(ctx context.Context, uid string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.expireAt, uid)
	return nil
}

func (t *memoryPresenceTracker) Refresh(ctx context.Context, uid string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.expireAt[uid]; ok {
		t.expireAt[uid] = time.Now().Add(time.Minute * constants.PRESENCE_TTL_MINUTES)
	}
	return nil
}

func (t *memoryPresenceTracker) IsOnline(ctx context.Context, uid string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	expire, ok := t.expireAt[uid]
	return ok && time.Now().Before(expire), nil
}

func (t *memoryPresenceTracker) FilterOnline(ctx context.Context, uids []string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	now := time.Now()
	online := make([]string, 0, len(uids))
	for _, uid := range uids {
		if expire, ok := t.expireAt[uid]; ok && now.Before(expire) {
			online = append(online, uid)
		}
	}
	return online, nil
}
