// Package cache keeps post slot summaries in Redis.
package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"social-service/internal/services"
)

const slotKeyPrefix = "slots:post"

// setIfNotLower writes the slot hash unless it already holds a higher
// participant count. Counts only grow, so the highest one is the freshest.
const setIfNotLower = `
local cur = redis.call("HGET", KEYS[1], "current")
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call("HSET", KEYS[1], "current", ARGV[1], "max", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`

type kv interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// SlotCache implements services.SlotCache. Redis failures are logged and
// treated as misses.
type SlotCache struct {
	client kv
	ttl    time.Duration
}

var _ services.SlotCache = (*SlotCache)(nil)

// NewClient connects to Redis and pings it once.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return newSlotCache(client, ttl)
}

func newSlotCache(client kv, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func slotKey(postID int64) string {
	return fmt.Sprintf("%s:%d", slotKeyPrefix, postID)
}

func (c *SlotCache) Get(ctx context.Context, postID int64) (*services.JoinedPostView, bool) {
	fields, err := c.client.HGetAll(ctx, slotKey(postID)).Result()
	if err != nil {
		log.Printf("warning: slot cache get post %d: %v", postID, err)
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}

	current, errCur := strconv.Atoi(fields["current"])
	maxSeats, errMax := strconv.Atoi(fields["max"])
	if errCur != nil || errMax != nil {
		log.Printf("warning: slot cache entry for post %d is corrupt: %v", postID, fields)
		return nil, false
	}
	return &services.JoinedPostView{
		PostID:              postID,
		CurrentParticipants: current,
		MaxParticipants:     maxSeats,
		RemainingSlots:      maxSeats - current,
	}, true
}

func (c *SlotCache) Set(ctx context.Context, view *services.JoinedPostView) {
	err := c.client.Eval(ctx, setIfNotLower, []string{slotKey(view.PostID)},
		view.CurrentParticipants, view.MaxParticipants, c.ttl.Milliseconds()).Err()
	if err != nil {
		log.Printf("warning: slot cache set post %d: %v", view.PostID, err)
	}
}
