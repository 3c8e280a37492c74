package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore holds the most recent poll result. Save replaces the previous
// snapshot wholesale; concurrent writers are last-write-wins.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (Snapshot, error)
}

const (
	snapshotBodyKey = "index:latest:body"
	snapshotTsKey   = "index:latest:ts"
)

// Repo is the Redis-backed SnapshotStore.
type Repo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRepo returns a Redis store; a zero ttl keeps snapshots until replaced.
func NewRepo(rdb *redis.Client, ttl time.Duration) *Repo { return &Repo{rdb: rdb, ttl: ttl} }

func (r *Repo) Save(ctx context.Context, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, snapshotBodyKey, b, r.ttl)
	pipe.Set(ctx, snapshotTsKey, snap.UpdatedAt.Unix(), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (r *Repo) Latest(ctx context.Context) (Snapshot, error) {
	b, err := r.rdb.Get(ctx, snapshotBodyKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Tokens == nil {
		snap.Tokens = []Summary{}
	}
	return snap, nil
}

// MemoryRepo is an in-process SnapshotStore for single-instance deployments.
type MemoryRepo struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (m *MemoryRepo) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	return nil
}

func (m *MemoryRepo) Latest(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return *m.snap, nil
}
