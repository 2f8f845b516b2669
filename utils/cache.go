// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fundigo/config"

	"github.com/go-redis/redis/v8"
)

var (
	// DispatchCacheClient caches ranked previews and other dispatch artifacts.
	DispatchCacheClient *redis.Client
)

// InitDispatchCache initializes the Redis client for dispatch caching.
func InitDispatchCache() {
	DispatchCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DispatchCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Dispatch Cache): %v", err)
	}
}

// GetDispatchCacheClient returns the dispatch cache client.
func GetDispatchCacheClient() *redis.Client {
	if DispatchCacheClient == nil {
		InitDispatchCache()
	}
	return DispatchCacheClient
}
