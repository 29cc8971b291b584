package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ruralwork/config"
	pkgerrors "ruralwork/pkg/errors"
	"ruralwork/pkg/redis"
)

// UserLocker 按用户串行化考勤分写入
type UserLocker interface {
	// Lock 获取 userID 的互斥锁，返回释放函数
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// NewUserLocker 配置了 Redis 时使用分布式锁，否则退化为进程内锁
func NewUserLocker(rdb *redis.Client, cfg *config.AttendanceConfig) UserLocker {
	if rdb == nil {
		return newLocalLocker(cfg.LockWait)
	}
	return &redisLocker{rdb: rdb, ttl: cfg.LockTTL, wait: cfg.LockWait}
}

// ────────── Redis ──────────

type redisLocker struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func (l *redisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	lock, err := l.rdb.AcquireLock(ctx, "score:"+userID, l.ttl, l.wait)
	if err != nil {
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return nil, pkgerrors.ErrLockTimeout
		}
		return nil, err
	}
	return func() {
		// 使用独立 context，请求取消后仍要释放
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lock.Release(ctx)
	}, nil
}

// ────────── 进程内 ──────────

type localEntry struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	wait    time.Duration
}

func newLocalLocker(wait time.Duration) *localLocker {
	return &localLocker{entries: make(map[string]*localEntry), wait: wait}
}

func (l *localLocker) Lock(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if l.wait > 0 {
		t := time.NewTimer(l.wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			l.release(userID, e)
		}, nil
	case <-ctx.Done():
		l.release(userID, e)
		return nil, ctx.Err()
	case <-timeout:
		l.release(userID, e)
		return nil, pkgerrors.ErrLockTimeout
	}
}

func (l *localLocker) release(userID string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, userID)
	}
}
