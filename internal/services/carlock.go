package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CarLocker serializes booking admission per car.
type CarLocker interface {
	Lock(ctx context.Context, carID uint) (unlock func(), err error)
}

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex is an in-process CarLocker. Entries are dropped once no
// goroutine holds or waits on them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[uint]*keyedEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[uint]*keyedEntry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, carID uint) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[carID]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		k.entries[carID] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.unref(carID, e)
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.unref(carID, e)
		})
	}, nil
}

func (k *KeyedMutex) unref(carID uint, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, carID)
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

var ErrLockTimeout = errors.New("timed out waiting for car lock")

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a CarLocker shared by every API replica using the same Redis.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, retry: 25 * time.Millisecond}
}

func carLockKey(carID uint) string {
	return fmt.Sprintf("carlock:%d", carID)
}

func (l *RedisLocker) Lock(ctx context.Context, carID uint) (func(), error) {
	key := carLockKey(carID)
	token := uuid.NewString()
	backoff := l.retry

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire car lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-timer.C:
		}
		if backoff < 250*time.Millisecond {
			backoff *= 2
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			releaseScript.Run(ctx, l.client, []string{key}, token)
		})
	}, nil
}
