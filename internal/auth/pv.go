package auth

import (
	"context"
	"errors"
	"strconv"

	"madmin/server/internal/model"
	"madmin/server/pkg/cachekey"

	"github.com/redis/go-redis/v9"
)

// ResetPV 登录时重置密码版本
func (s *TokenService) ResetPV(ctx context.Context, uid uint) error {
	return s.rdb.Set(ctx, cachekey.AuthPV(uid), model.InitialPasswordVersion, 0).Err()
}

// GetPV 读取密码版本，键不存在返回0
func (s *TokenService) GetPV(ctx context.Context, uid uint) (int64, error) {
	val, err := s.rdb.Get(ctx, cachekey.AuthPV(uid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// BumpPV 递增密码版本，使已签发的访问令牌立即失效
func (s *TokenService) BumpPV(ctx context.Context, uid uint) (int64, error) {
	return s.rdb.Incr(ctx, cachekey.AuthPV(uid)).Result()
}

// ClearPV 清除密码版本键，用于全量下线时的会话清理
func (s *TokenService) ClearPV(ctx context.Context, uid uint) error {
	return s.rdb.Del(ctx, cachekey.AuthPV(uid)).Err()
}
