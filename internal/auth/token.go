package auth

import (
	"context"
	"errors"
	"time"

	"madmin/server/internal/config"
	"madmin/server/internal/model"
	"madmin/server/pkg/cachekey"
	"madmin/server/pkg/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrTokenInvalid = errors.New("令牌无效")
	ErrTokenExpired = errors.New("令牌已过期")
)

// AccessClaims 访问令牌载荷
type AccessClaims struct {
	UID   uint   `json:"uid"`
	PV    int64  `json:"pv"`
	Roles []uint `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshClaims 刷新令牌载荷
type RefreshClaims struct {
	UUID string `json:"uuid"`
	jwt.RegisteredClaims
}

// TokenPair 一次登录签发的令牌对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService 令牌签发与持久化
type TokenService struct {
	cfg config.SecurityConfig
	db  *gorm.DB
	rdb *redis.Client
}

// NewTokenService 创建令牌服务
func NewTokenService(cfg config.SecurityConfig, db *gorm.DB, rdb *redis.Client) *TokenService {
	return &TokenService{cfg: cfg, db: db, rdb: rdb}
}

// AccessTTL 访问令牌有效期
func (s *TokenService) AccessTTL() time.Duration {
	return time.Duration(s.cfg.JwtExpire) * time.Second
}

// RefreshTTL 刷新令牌有效期
func (s *TokenService) RefreshTTL() time.Duration {
	return time.Duration(s.cfg.RefreshExpire) * time.Second
}

// GenerateTokenPair 签发访问/刷新令牌对并落库，同时写入在线指针
func (s *TokenService) GenerateTokenPair(ctx context.Context, uid uint, pv int64, roles []uint, ip, userAgent string) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL())
	refreshExp := now.Add(s.RefreshTTL())

	accessValue, err := s.signAccess(uid, pv, roles, now, accessExp)
	if err != nil {
		return nil, err
	}
	refreshValue, err := s.signRefresh(now, refreshExp)
	if err != nil {
		return nil, err
	}

	access := &model.AccessToken{
		UserID:    uid,
		Value:     accessValue,
		IP:        ip,
		UserAgent: userAgent,
		ExpiredAt: types.NewDateTime(accessExp),
		RefreshToken: &model.RefreshToken{
			Value:     refreshValue,
			ExpiredAt: types.NewDateTime(refreshExp),
		},
	}
	if err := s.db.WithContext(ctx).Create(access).Error; err != nil {
		return nil, err
	}

	// 在线指针指向最新令牌，有效期与访问令牌一致
	if err := s.rdb.Set(ctx, cachekey.AuthToken(uid), accessValue, s.AccessTTL()).Err(); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessValue, RefreshToken: refreshValue}, nil
}

func (s *TokenService) signAccess(uid uint, pv int64, roles []uint, now, exp time.Time) (string, error) {
	claims := AccessClaims{
		UID:   uid,
		PV:    pv,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti保证同一秒内签发的令牌互不相同
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JwtSecret))
}

func (s *TokenService) signRefresh(now, exp time.Time) (string, error) {
	claims := RefreshClaims{
		UUID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.RefreshSecret))
}

// ParseAccess 校验访问令牌签名与有效期，返回身份
func (s *TokenService) ParseAccess(tokenValue string) (*Identity, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenValue, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(s.cfg.JwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return &Identity{UID: claims.UID, PV: claims.PV, Roles: claims.Roles}, nil
}

// ParseRefresh 校验刷新令牌，返回其唯一标识
func (s *TokenService) ParseRefresh(tokenValue string) (string, error) {
	var claims RefreshClaims
	token, err := jwt.ParseWithClaims(tokenValue, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(s.cfg.RefreshSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}
	return claims.UUID, nil
}

// Exists 访问令牌是否仍在登录记录中
func (s *TokenService) Exists(ctx context.Context, tokenValue string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.AccessToken{}).
		Where("value = ?", tokenValue).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByValue 按令牌值查登录记录
func (s *TokenService) FindByValue(ctx context.Context, tokenValue string) (*model.AccessToken, error) {
	var record model.AccessToken
	err := s.db.WithContext(ctx).Preload("RefreshToken").
		Where("value = ?", tokenValue).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByRefreshValue 按刷新令牌值查访问令牌记录
func (s *TokenService) FindByRefreshValue(ctx context.Context, refreshValue string) (*model.AccessToken, error) {
	var refresh model.RefreshToken
	err := s.db.WithContext(ctx).Where("value = ?", refreshValue).First(&refresh).Error
	if err != nil {
		return nil, err
	}
	var record model.AccessToken
	err = s.db.WithContext(ctx).Where("id = ?", refresh.AccessTokenID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Remove 删除一条登录记录(级联删除刷新令牌)，并清理指向它的在线指针
func (s *TokenService) Remove(ctx context.Context, record *model.AccessToken) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("access_token_id = ?", record.ID).Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.AccessToken{}, record.ID).Error
	})
	if err != nil {
		return err
	}

	key := cachekey.AuthToken(record.UserID)
	current, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if current == record.Value {
		return s.rdb.Del(ctx, key).Err()
	}
	return nil
}

// RemoveAllForUser 删除用户全部登录记录并清理在线指针
func (s *TokenService) RemoveAllForUser(ctx context.Context, uid uint) error {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.AccessToken{}).
		Where("user_id = ?", uid).Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("access_token_id IN ?", ids).Delete(&model.RefreshToken{}).Error; err != nil {
				return err
			}
			return tx.Where("user_id = ?", uid).Delete(&model.AccessToken{}).Error
		})
		if err != nil {
			return err
		}
	}
	return s.rdb.Del(ctx, cachekey.AuthToken(uid)).Err()
}

// ListForUser 用户全部在线登录记录
func (s *TokenService) ListForUser(ctx context.Context, uid uint) ([]model.AccessToken, error) {
	var records []model.AccessToken
	err := s.db.WithContext(ctx).Where("user_id = ?", uid).
		Order("created_at DESC").Find(&records).Error
	return records, err
}

// PurgeExpired 清理已过期的令牌记录，返回清理条数
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	now := types.NewDateTime(time.Now())
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.AccessToken{}).
		Where("expired_at < ?", now).Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	var total int64
	if len(ids) > 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("access_token_id IN ?", ids).Delete(&model.RefreshToken{}).Error; err != nil {
				return err
			}
			res := tx.Where("id IN ?", ids).Delete(&model.AccessToken{})
			total = res.RowsAffected
			return res.Error
		})
		if err != nil {
			return 0, err
		}
	}
	// 孤立的过期刷新令牌一并清理
	res := s.db.WithContext(ctx).Where("expired_at < ?", now).Delete(&model.RefreshToken{})
	if res.Error != nil {
		return total, res.Error
	}
	return total + res.RowsAffected, nil
}
