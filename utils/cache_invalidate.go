package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator purges cached event responses after mutations.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator {
	return &CacheInvalidator{rdb}
}

// PurgeEvents drops every cached event read: lists, featured, categories,
// recent reviews and item views. Item keys hash the id, so a targeted purge
// would need the raw id inside the key; scanning the namespace is cheap at
// this cache size.
func (ci *CacheInvalidator) PurgeEvents(ctx context.Context) {
	for _, pattern := range []string{"cache:events:list:*", "cache:events:item:*"} {
		iter := ci.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			_ = ci.rdb.Del(ctx, iter.Val()).Err()
		}
	}
}
