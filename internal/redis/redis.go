package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// New connects to Redis and verifies the connection with a short ping.
func New(addr, password string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
