package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/db"
	"github.com/Garicore01/PlayBeat-Backend/model"

	"github.com/go-redis/redis/v8"
)

// listTTL bounds staleness when an invalidation is missed.
const listTTL = 30 * time.Minute

// ListKey generates the Redis key for a cached list.
func ListKey(listID int64) string {
	return fmt.Sprintf("list:%d", listID)
}

// GetList returns the cached list, or nil on a miss.
func GetList(ctx context.Context, listID int64) (*model.List, error) {
	if db.RedisClient == nil {
		return nil, nil
	}

	data, err := db.RedisClient.Get(ctx, ListKey(listID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read list cache: %w", err)
	}

	var list model.List
	if err := json.Unmarshal(data, &list); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		db.RedisClient.Del(ctx, ListKey(listID))
		return nil, nil
	}
	return &list, nil
}

// SetList caches a list snapshot.
func SetList(ctx context.Context, list *model.List) error {
	if db.RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal list: %w", err)
	}
	return db.RedisClient.Set(ctx, ListKey(list.ID), data, listTTL).Err()
}

// InvalidateList drops a cached list after any mutation.
func InvalidateList(ctx context.Context, listID int64) {
	if db.RedisClient == nil {
		return
	}
	db.RedisClient.Del(ctx, ListKey(listID))
}
