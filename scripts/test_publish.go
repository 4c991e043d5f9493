//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/audioguide-discovery/internal/domain"
)

// Publishes synthetic play events so the worker can be exercised by hand:
//
//	go run scripts/test_publish.go -guide 1 -n 5
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	guideID := flag.Int64("guide", 1, "guide id to count plays for")
	count := flag.Int("n", 1, "number of events")
	flag.Parse()

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	for i := 0; i < *count; i++ {
		event := domain.NewPlayEvent(*guideID, fmt.Sprintf("script-%d", i), time.Now())

		data, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}

		id, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: domain.StreamGuidePlay,
			Values: map[string]interface{}{"data": string(data)},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}

		fmt.Printf("published %s event=%s guide=%d\n", id, event.ID, event.GuideID)
	}

	length, err := client.XLen(ctx, domain.StreamGuidePlay).Result()
	if err == nil {
		fmt.Printf("stream %s length: %d\n", domain.StreamGuidePlay, length)
	}
}
