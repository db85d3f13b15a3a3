package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"madmin/server/internal/model"
	"madmin/server/pkg/cachekey"
	"madmin/server/pkg/logger"
	"madmin/server/pkg/utils"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PermissionService 权限解析与缓存
type PermissionService struct {
	db   *gorm.DB
	rdb  *redis.Client
	rs   *redsync.Redsync
	pool *ants.Pool
}

// NewPermissionService 创建权限服务
func NewPermissionService(db *gorm.DB, rdb *redis.Client) (*PermissionService, error) {
	pool, err := ants.NewPool(16)
	if err != nil {
		return nil, err
	}
	return &PermissionService{
		db:   db,
		rdb:  rdb,
		rs:   redsync.New(redsyncredis.NewPool(rdb)),
		pool: pool,
	}, nil
}

// Close 释放协程池
func (s *PermissionService) Close() {
	s.pool.Release()
}

// GetRoleIDs 获取用户的启用角色ID列表
func (s *PermissionService) GetRoleIDs(ctx context.Context, uid uint) ([]uint, error) {
	var roleIDs []uint
	err := s.db.WithContext(ctx).Model(&model.Role{}).
		Joins("JOIN sys_user_role ON sys_user_role.role_id = sys_role.id").
		Where("sys_user_role.user_id = ? AND sys_role.status = 1", uid).
		Pluck("sys_role.id", &roleIDs).Error
	return roleIDs, err
}

// IsAdmin 角色列表是否含超级管理员
func IsAdmin(roleIDs []uint) bool {
	return slice.Contain(roleIDs, uint(model.RootRoleID))
}

// GetPermissions 解析用户的权限标识集合，超级管理员拥有全部权限
func (s *PermissionService) GetPermissions(ctx context.Context, uid uint) ([]string, error) {
	roleIDs, err := s.GetRoleIDs(ctx, uid)
	if err != nil {
		return nil, err
	}

	var raw []string
	q := s.db.WithContext(ctx).Model(&model.Menu{}).
		Where("permission <> '' AND type IN ? AND status = 1", []int8{model.MenuTypeMenu, model.MenuTypeButton})
	if !IsAdmin(roleIDs) {
		if len(roleIDs) == 0 {
			return []string{}, nil
		}
		q = q.Joins("JOIN sys_role_menu ON sys_role_menu.menu_id = sys_menu.id").
			Where("sys_role_menu.role_id IN ?", roleIDs)
	}
	if err := q.Pluck("permission", &raw).Error; err != nil {
		return nil, err
	}

	// 权限字段允许逗号分隔多个标识
	perms := make([]string, 0, len(raw))
	for _, p := range raw {
		for _, part := range strings.Split(p, ",") {
			if part = strings.TrimSpace(part); part != "" {
				perms = append(perms, part)
			}
		}
	}
	return slice.Unique(perms), nil
}

// GetMenus 获取用户可见的菜单树(目录与菜单节点)
func (s *PermissionService) GetMenus(ctx context.Context, uid uint) ([]model.Menu, error) {
	roleIDs, err := s.GetRoleIDs(ctx, uid)
	if err != nil {
		return nil, err
	}

	var menus []model.Menu
	q := s.db.WithContext(ctx).Model(&model.Menu{}).
		Where("type IN ? AND status = 1", []int8{model.MenuTypeDirectory, model.MenuTypeMenu})
	if !IsAdmin(roleIDs) {
		if len(roleIDs) == 0 {
			return []model.Menu{}, nil
		}
		q = q.Joins("JOIN sys_role_menu ON sys_role_menu.menu_id = sys_menu.id").
			Where("sys_role_menu.role_id IN ?", roleIDs).
			Distinct("sys_menu.*")
	}
	if err := q.Order("order_no ASC, id ASC").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

// CachePermissions 计算并写入用户权限缓存
func (s *PermissionService) CachePermissions(ctx context.Context, uid uint) ([]string, error) {
	perms, err := s.GetPermissions(ctx, uid)
	if err != nil {
		return nil, err
	}
	data, err := utils.ToJSON(perms)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, cachekey.AuthPerm(uid), data, 0).Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// CachedPermissions 读取用户权限缓存，未命中时回源并回填
func (s *PermissionService) CachedPermissions(ctx context.Context, uid uint) ([]string, error) {
	data, err := s.rdb.Get(ctx, cachekey.AuthPerm(uid)).Result()
	if err == nil {
		perms, err := utils.FromJSON[[]string](data)
		if err == nil {
			return perms, nil
		}
		logger.Warn("权限缓存解析失败，走回源", zap.Uint("uid", uid), zap.Error(err))
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return s.CachePermissions(ctx, uid)
}

// ClearPermissions 清除用户权限缓存
func (s *PermissionService) ClearPermissions(ctx context.Context, uid uint) error {
	return s.rdb.Del(ctx, cachekey.AuthPerm(uid)).Err()
}

// RefreshOnlineUserPerms 角色或菜单变更后，重算全部在线用户的权限缓存。
// 分布式锁保证同一时刻只有一个实例在刷新；锁被占用时等待持有者释放后
// 再跑一遍，本次变更必须落到缓存。单个用户失败不中断整体。
func (s *PermissionService) RefreshOnlineUserPerms(ctx context.Context) error {
	mutex := s.rs.NewMutex(cachekey.PermRefreshLock(), redsync.WithExpiry(30*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			logger.Warn("权限刷新锁释放失败", zap.Error(err))
		}
	}()

	uids, err := s.scanOnlineUIDs(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, uid := range uids {
		uid := uid
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if _, err := s.CachePermissions(ctx, uid); err != nil {
				logger.Error("刷新用户权限缓存失败", zap.Uint("uid", uid), zap.Error(err))
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("提交权限刷新任务失败", zap.Uint("uid", uid), zap.Error(err))
		}
	}
	wg.Wait()

	logger.Info("在线用户权限缓存已刷新", zap.Int("count", len(uids)))
	return nil
}

// scanOnlineUIDs 扫描在线令牌指针键，解析出用户ID
func (s *PermissionService) scanOnlineUIDs(ctx context.Context) ([]uint, error) {
	var uids []uint
	iter := s.rdb.Scan(ctx, 0, cachekey.AuthTokenPattern(), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		idx := strings.LastIndex(key, ":")
		if idx < 0 {
			continue
		}
		uid, err := strconv.ParseUint(key[idx+1:], 10, 64)
		if err != nil {
			continue
		}
		uids = append(uids, uint(uid))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return uids, nil
}
