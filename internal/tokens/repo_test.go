package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(at time.Time) Snapshot {
	return NewSnapshot([]Summary{
		{Name: "Big", Symbol: "BIG", MarketCap: amt("300.5").Decimal(), Price: amt("0.00000123").Decimal(), ContractAddress: "0xbig"},
		{Name: "Small", Symbol: "SML", MarketCap: amt("50").Decimal(), ActivityCount: 9, ContractAddress: "0xsmall", ImageURL: "https://img.example/s.png"},
	}, at)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRepo_SaveAndLatest(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRepo(rdb, 0)
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, sampleSnapshot(at)))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tokens, 2)
	assert.True(t, got.UpdatedAt.Equal(at))
	assert.Equal(t, "0xbig", got.Tokens[0].ContractAddress)
	assert.True(t, got.Tokens[0].Price.Equal(amt("0.00000123").Decimal()))
	assert.True(t, got.TotalMarketCap().Equal(amt("350.5").Decimal()))
	assert.Equal(t, "https://img.example/s.png", got.Tokens[1].ImageURL)
}

func TestRepo_SaveReplacesWholesale(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRepo(rdb, 0)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot(time.Unix(1, 0).UTC())))
	require.NoError(t, repo.Save(ctx, NewSnapshot(nil, time.Unix(2, 0).UTC())))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got.Tokens)
	assert.Empty(t, got.Tokens)
	assert.Equal(t, int64(2), got.UpdatedAt.Unix())
}

func TestRepo_TTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewRepo(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot(time.Now().UTC())))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemoryRepo(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	snap := sampleSnapshot(time.Now().UTC())
	require.NoError(t, repo.Save(ctx, snap))
	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}
