package auth

import (
	"context"
	"testing"

	"madmin/server/internal/model"
	"madmin/server/pkg/cachekey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	return NewTokenService(testSecurityConfig(), newTestDB(t), newTestRedis(t))
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, 42, 1, []uint{2, 3}, "127.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// 落库记录与刷新令牌级联存在
	record, err := svc.FindByValue(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), record.UserID)
	require.NotNil(t, record.RefreshToken)
	assert.Equal(t, pair.RefreshToken, record.RefreshToken.Value)

	// 在线指针指向新令牌
	val, err := svc.rdb.Get(ctx, cachekey.AuthToken(42)).Result()
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken, val)
}

func TestParseAccess(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, 7, 3, []uint{1}, "", "")
	require.NoError(t, err)

	identity, err := svc.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), identity.UID)
	assert.Equal(t, int64(3), identity.PV)
	assert.Equal(t, []uint{1}, identity.Roles)
}

func TestParseAccessInvalid(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// 刷新令牌用的是另一把密钥，不能当访问令牌用
	pair, err := svc.GenerateTokenPair(context.Background(), 1, 1, nil, "", "")
	require.NoError(t, err)
	_, err = svc.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessExpired(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.JwtExpire = -10
	svc := NewTokenService(cfg, newTestDB(t), newTestRedis(t))

	pair, err := svc.GenerateTokenPair(context.Background(), 1, 1, nil, "", "")
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseRefresh(t *testing.T) {
	svc := newTestTokenService(t)

	pair, err := svc.GenerateTokenPair(context.Background(), 1, 1, nil, "", "")
	require.NoError(t, err)

	uuid, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, uuid)

	_, err = svc.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRemoveClearsPointer(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, 5, 1, nil, "", "")
	require.NoError(t, err)

	record, err := svc.FindByValue(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, record))

	exists, err := svc.Exists(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := svc.rdb.Exists(ctx, cachekey.AuthToken(5)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRemoveKeepsNewerPointer(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	old, err := svc.GenerateTokenPair(ctx, 5, 1, nil, "", "")
	require.NoError(t, err)
	latest, err := svc.GenerateTokenPair(ctx, 5, 1, nil, "", "")
	require.NoError(t, err)

	// 删除旧记录不应清掉指向新令牌的指针
	record, err := svc.FindByValue(ctx, old.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, record))

	val, err := svc.rdb.Get(ctx, cachekey.AuthToken(5)).Result()
	require.NoError(t, err)
	assert.Equal(t, latest.AccessToken, val)
}

func TestRemoveAllForUser(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	_, err := svc.GenerateTokenPair(ctx, 9, 1, nil, "", "")
	require.NoError(t, err)
	_, err = svc.GenerateTokenPair(ctx, 9, 1, nil, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAllForUser(ctx, 9))

	records, err := svc.ListForUser(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, records)

	var refreshCount int64
	require.NoError(t, svc.db.Model(&model.RefreshToken{}).Count(&refreshCount).Error)
	assert.Zero(t, refreshCount)
}

func TestPurgeExpired(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.JwtExpire = -10
	cfg.RefreshExpire = -10
	svc := NewTokenService(cfg, newTestDB(t), newTestRedis(t))
	ctx := context.Background()

	_, err := svc.GenerateTokenPair(ctx, 1, 1, nil, "", "")
	require.NoError(t, err)

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Positive(t, purged)

	var count int64
	require.NoError(t, svc.db.Model(&model.AccessToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPasswordVersion(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	// 未初始化时为0
	pv, err := svc.GetPV(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, pv)

	require.NoError(t, svc.ResetPV(ctx, 1))
	pv, err = svc.GetPV(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(model.InitialPasswordVersion), pv)

	bumped, err := svc.BumpPV(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(model.InitialPasswordVersion+1), bumped)
}
