package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"madmin/server/internal/config"
	"madmin/server/internal/model"
	"madmin/server/internal/router"
	"madmin/server/internal/svc"
	"madmin/server/internal/task"
	"madmin/server/pkg/database"
	"madmin/server/pkg/logger"
	"madmin/server/pkg/redis"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var configFile = flag.String("f", "config/config.yml", "配置文件路径")

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	logger.Init(cfg.Log.ToLogger())
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer database.Close()

	db := database.GetDB()
	if err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Menu{},
		&model.Dept{},
		&model.AccessToken{},
		&model.RefreshToken{},
		&model.LoginLog{},
		&model.OperationLog{},
		&model.UserRole{},
		&model.RoleMenu{},
	); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 初始化默认数据
	seedDefaultData(db)

	// 初始化Redis
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("初始化Redis失败", zap.Error(err))
	}
	defer redis.Close()

	// 组装服务依赖
	svcCtx, err := svc.NewServiceContext(cfg, db, redis.GetClient())
	if err != nil {
		logger.Fatal("初始化服务依赖失败", zap.Error(err))
	}
	defer svcCtx.Close()

	// 创建Fiber应用
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	router.Setup(app, svcCtx)

	// 启动定时清理任务
	if cfg.Task.Enabled {
		cleaner, err := task.NewCleaner(svcCtx)
		if err != nil {
			logger.Fatal("初始化清理任务失败", zap.Error(err))
		}
		if err := cleaner.Start(); err != nil {
			logger.Fatal("启动清理任务失败", zap.Error(err))
		}
		defer cleaner.Stop()
	}

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("服务器启动", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")
	if err := app.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
	}
	logger.Info("服务器已关闭")
}
