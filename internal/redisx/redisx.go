package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Cached order status detail: order_status:{order_id} -> JSON
	KeyOrderStatus = "order_status:%s"
)

var TTLStatusCache = 5 * time.Minute

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
