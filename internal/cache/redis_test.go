package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/services"
)

// memoryKV keeps slot hashes in memory and applies setIfNotLower the way the
// script does on the server.
type memoryKV struct {
	data    map[string]map[string]string
	ttls    map[string]time.Duration
	failing bool
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]map[string]string{}, ttls: map[string]time.Duration{}}
}

var errDown = errors.New("connection refused")

func (m *memoryKV) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if m.failing {
		return redis.NewMapStringStringResult(nil, errDown)
	}
	out := map[string]string{}
	for k, v := range m.data[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *memoryKV) Eval(_ context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	if m.failing {
		return redis.NewCmdResult(nil, errDown)
	}
	if script != setIfNotLower || len(keys) != 1 || len(args) != 3 {
		return redis.NewCmdResult(nil, errors.New("unexpected script call"))
	}
	current := args[0].(int)
	if cur, ok := m.data[keys[0]]["current"]; ok {
		if n, _ := strconv.Atoi(cur); n > current {
			return redis.NewCmdResult(int64(0), nil)
		}
	}
	m.data[keys[0]] = map[string]string{
		"current": strconv.Itoa(current),
		"max":     strconv.Itoa(args[1].(int)),
	}
	m.ttls[keys[0]] = time.Duration(args[2].(int64)) * time.Millisecond
	return redis.NewCmdResult(int64(1), nil)
}

func TestSlotCacheRoundTrip(t *testing.T) {
	store := newMemoryKV()
	c := newSlotCache(store, 30*time.Second)
	ctx := context.Background()

	_, ok := c.Get(ctx, 7)
	assert.False(t, ok)

	c.Set(ctx, &services.JoinedPostView{PostID: 7, CurrentParticipants: 1, MaxParticipants: 3, RemainingSlots: 2})
	assert.Equal(t, 30*time.Second, store.ttls["slots:post:7"])

	view, ok := c.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, &services.JoinedPostView{PostID: 7, CurrentParticipants: 1, MaxParticipants: 3, RemainingSlots: 2}, view)
}

func TestSlotCacheNeverLowersCount(t *testing.T) {
	store := newMemoryKV()
	c := newSlotCache(store, time.Minute)
	ctx := context.Background()

	// a join writes 2 while a slower reader still holds the count it loaded before
	c.Set(ctx, &services.JoinedPostView{PostID: 4, CurrentParticipants: 2, MaxParticipants: 3})
	c.Set(ctx, &services.JoinedPostView{PostID: 4, CurrentParticipants: 1, MaxParticipants: 3})

	view, ok := c.Get(ctx, 4)
	require.True(t, ok)
	assert.Equal(t, 2, view.CurrentParticipants)
	assert.Equal(t, 1, view.RemainingSlots)

	c.Set(ctx, &services.JoinedPostView{PostID: 4, CurrentParticipants: 3, MaxParticipants: 3})
	view, ok = c.Get(ctx, 4)
	require.True(t, ok)
	assert.Equal(t, 0, view.RemainingSlots)
}

func TestSlotCacheFailuresAreMisses(t *testing.T) {
	store := newMemoryKV()
	c := newSlotCache(store, time.Second)
	ctx := context.Background()

	store.data["slots:post:9"] = map[string]string{"current": "x", "max": "3"}
	_, ok := c.Get(ctx, 9)
	assert.False(t, ok)

	store.failing = true
	c.Set(ctx, &services.JoinedPostView{PostID: 9})
	_, ok = c.Get(ctx, 9)
	assert.False(t, ok)
}
