package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// AcquireRunLock takes a best-effort advisory lock for a named batch job
// so overlapping schedule triggers don't run the same sweep twice. The
// sweeps are idempotent, so a missing redis only loses the convenience:
// we log and let the run proceed.
func AcquireRunLock(ctx context.Context, job string, ttl time.Duration) bool {
	rdb := GetRedisClient()
	if rdb == nil {
		log.Printf("[redis] No client available. Running %s without a lock\n", job)
		return true
	}
	ok, err := rdb.SetNX(ctx, "batch:lock:"+job, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		log.Printf("[redis] Error acquiring lock for %s: %s\n", job, err.Error())
		return true
	}
	if !ok {
		log.Printf("[redis] Job %s already running elsewhere. Skipping\n", job)
	}
	return ok
}

func ReleaseRunLock(ctx context.Context, job string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, "batch:lock:"+job).Err(); err != nil {
		log.Printf("[redis] Error releasing lock for %s: %s\n", job, err.Error())
	}
}
