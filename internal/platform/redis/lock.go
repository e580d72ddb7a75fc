package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another run already holds the lock.
var ErrLockHeld = errors.New("run lock held by another process")

const lockKeyPrefix = "candidate-merge:run-lock:"

// releaseScript deletes the key only if it still carries our token, so a run
// whose lock expired never releases a lock acquired by a later run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a held per-source lock.
type RunLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

// AcquireRunLock takes the lock for sourceID with the given TTL.
func AcquireRunLock(ctx context.Context, client redis.UniversalClient, sourceID string, ttl time.Duration) (*RunLock, error) {
	key := lockKeyPrefix + sourceID
	token := uuid.NewString()

	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", sourceID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, sourceID)
	}
	return &RunLock{client: client, key: key, token: token}, nil
}

// Release drops the lock if it is still ours. Releasing twice is a no-op.
func (l *RunLock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// Key returns the Redis key backing the lock.
func (l *RunLock) Key() string {
	return l.key
}
