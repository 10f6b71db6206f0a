package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
)

// Locker serializes mutations per session id. TryLock never waits: a held key
// yields a CONFLICT error.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(), err error)
}

func busy(key string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "session is busy with another operation").
		WithDetails(map[string]any{"session_id": key})
}

// MemoryLocker is a process-local keyed lock.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, busy(key)
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

type lockClient interface {
	AcquireLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, token string) (bool, error)
}

// OnReleaseError is called when a Redis lock could not be released cleanly.
type OnReleaseError func(ctx context.Context, key string, err error)

// RedisLocker shares session locks between API instances. The ttl bounds how
// long a crashed holder can block a session.
type RedisLocker struct {
	client    lockClient
	ttl       time.Duration
	onRelease OnReleaseError
}

func NewRedisLocker(client lockClient, ttl time.Duration, onRelease OnReleaseError) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis lock client required")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	return &RedisLocker{client: client, ttl: ttl, onRelease: onRelease}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.AcquireLock(ctx, lockName(key), token, l.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire session lock")
	}
	if !ok {
		return nil, busy(key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			released, err := l.client.ReleaseLock(releaseCtx, lockName(key), token)
			if err == nil && !released {
				err = errors.New("lock expired before release")
			}
			if err != nil && l.onRelease != nil {
				l.onRelease(ctx, key, err)
			}
		})
	}, nil
}

func lockName(key string) string {
	return "session:" + key
}
