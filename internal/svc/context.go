package svc

import (
	"madmin/server/internal/auth"
	"madmin/server/internal/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceContext 服务依赖集合
type ServiceContext struct {
	Config    *config.Config
	DB        *gorm.DB
	RDB       *redis.Client
	Token     *auth.TokenService
	Blacklist *auth.Blacklist
	Perm      *auth.PermissionService
	Registry  *auth.Registry
}

// NewServiceContext 组装服务依赖
func NewServiceContext(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*ServiceContext, error) {
	perm, err := auth.NewPermissionService(db, rdb)
	if err != nil {
		return nil, err
	}
	return &ServiceContext{
		Config:    cfg,
		DB:        db,
		RDB:       rdb,
		Token:     auth.NewTokenService(cfg.Security, db, rdb),
		Blacklist: auth.NewBlacklist(rdb),
		Perm:      perm,
		Registry:  auth.NewRegistry(),
	}, nil
}

// Close 释放资源
func (s *ServiceContext) Close() {
	if s.Perm != nil {
		s.Perm.Close()
	}
}
