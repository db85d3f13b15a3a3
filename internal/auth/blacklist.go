package auth

import (
	"context"
	"time"

	"madmin/server/pkg/cachekey"

	"github.com/redis/go-redis/v9"
)

// Blacklist 失效令牌黑名单，键的存活时间等于令牌剩余有效期
type Blacklist struct {
	rdb *redis.Client
}

// NewBlacklist 创建黑名单
func NewBlacklist(rdb *redis.Client) *Blacklist {
	return &Blacklist{rdb: rdb}
}

// Add 拉黑令牌，ttl为令牌剩余有效期；已过期的令牌无需入黑名单
func (b *Blacklist) Add(ctx context.Context, tokenValue string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, cachekey.Blacklist(tokenValue), "1", ttl).Err()
}

// Contains 令牌是否在黑名单中
func (b *Blacklist) Contains(ctx context.Context, tokenValue string) (bool, error) {
	n, err := b.rdb.Exists(ctx, cachekey.Blacklist(tokenValue)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
