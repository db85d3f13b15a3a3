package task

import (
	"context"

	"madmin/server/internal/logic"
	"madmin/server/internal/svc"
	"madmin/server/pkg/logger"

	redislock "github.com/go-co-op/gocron-redis-lock/v2"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Cleaner 周期性清理过期令牌与历史日志。
// 多实例部署时通过Redis分布式锁保证任务只在一个实例上执行。
type Cleaner struct {
	svc       *svc.ServiceContext
	scheduler gocron.Scheduler
}

// NewCleaner 创建清理任务
func NewCleaner(svcCtx *svc.ServiceContext) (*Cleaner, error) {
	locker, err := redislock.NewRedisLocker(svcCtx.RDB, redislock.WithTries(1))
	if err != nil {
		return nil, err
	}
	scheduler, err := gocron.NewScheduler(gocron.WithDistributedLocker(locker))
	if err != nil {
		return nil, err
	}
	return &Cleaner{svc: svcCtx, scheduler: scheduler}, nil
}

// Start 注册并启动定时任务
func (c *Cleaner) Start() error {
	cron := c.svc.Config.Task.TokenPurge
	if cron == "" {
		cron = "0 3 * * *"
	}

	_, err := c.scheduler.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(c.run),
		gocron.WithName("cleaner"),
	)
	if err != nil {
		return err
	}

	c.scheduler.Start()
	return nil
}

// Stop 停止调度器
func (c *Cleaner) Stop() error {
	return c.scheduler.Shutdown()
}

func (c *Cleaner) run() {
	ctx := context.Background()

	purged, err := c.svc.Token.PurgeExpired(ctx)
	if err != nil {
		logger.Error("过期令牌清理失败", zap.Error(err))
	} else {
		logger.Info("过期令牌清理完成", zap.Int64("purged", purged))
	}

	removed, err := logic.NewLogLogic(c.svc).PurgeBefore(ctx, c.svc.Config.Task.LogRetention)
	if err != nil {
		logger.Error("历史日志清理失败", zap.Error(err))
	} else {
		logger.Info("历史日志清理完成", zap.Int64("removed", removed))
	}
}
