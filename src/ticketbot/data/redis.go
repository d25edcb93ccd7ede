package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamEvents = "tickets.events"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishEvent appends a lifecycle event to the ticket event stream for
// external consumers. Callers treat failures as best-effort.
func PublishEvent(ctx context.Context, rdb *redis.Client, event string, payload map[string]interface{}) error {
	values := map[string]interface{}{"event": event}
	for k, v := range payload {
		values[k] = v
	}
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: values,
	}).Result()
	return err
}
