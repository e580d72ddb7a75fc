// Package keylock serializes work per string key without a global lock.
package keylock

import (
	"context"
	"hash/fnv"
	"sync"
)

// numShards spreads keys over a fixed set of mutexes. Two keys that land on
// the same shard serialize against each other, which is safe, only slower.
const numShards = 128

// Sharded hands out a mutex per key hash. The zero value is ready to use.
type Sharded struct {
	shards [numShards]sync.Mutex
}

// New returns a ready Sharded lock.
func New() *Sharded {
	return &Sharded{}
}

// Do runs fn while holding the shard lock for key. It returns ctx.Err() without
// running fn when the context is already done once the lock is acquired.
func (s *Sharded) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := &s.shards[shardFor(key)]
	m.Lock()
	defer m.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// shardFor uses FNV-1a for an even spread across shards.
func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % numShards
}
