package config

import (
	"os"
	"sync"

	"madmin/server/pkg/database"
	"madmin/server/pkg/logger"
	"madmin/server/pkg/redis"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App      AppConfig       `yaml:"app"`
	Server   ServerConfig    `yaml:"server"`
	Database database.Config `yaml:"database"`
	Redis    redis.Config    `yaml:"redis"`
	Log      LogConfig       `yaml:"log"`
	Security SecurityConfig  `yaml:"security"`
	Captcha  CaptchaConfig   `yaml:"captcha"`
	Task     TaskConfig      `yaml:"task"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"` // dev, test, prod
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	BodyLimit    int    `yaml:"body_limit"` // MB
	Prefix       string `yaml:"prefix"`     // 全局路由前缀
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stdout, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JwtSecret        string `yaml:"jwt_secret"`         // 访问令牌密钥
	JwtExpire        int64  `yaml:"jwt_expire"`         // 访问令牌有效期(秒)
	RefreshSecret    string `yaml:"refresh_secret"`     // 刷新令牌密钥
	RefreshExpire    int64  `yaml:"refresh_expire"`     // 刷新令牌有效期(秒)
	MultiDeviceLogin bool   `yaml:"multi_device_login"` // 是否允许多端同时在线
}

// CaptchaConfig 验证码配置
type CaptchaConfig struct {
	Enabled bool  `yaml:"enabled"`
	Width   int   `yaml:"width"`
	Height  int   `yaml:"height"`
	Length  int   `yaml:"length"`
	Expire  int64 `yaml:"expire"` // 有效期(秒)
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	Enabled      bool   `yaml:"enabled"`
	TokenPurge   string `yaml:"token_purge"`   // 过期令牌清理cron表达式
	LogRetention int    `yaml:"log_retention"` // 日志保留天数
}

// ToLogger 转换为日志包配置
func (c *LogConfig) ToLogger() *logger.Config {
	return &logger.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
	}
}

var (
	globalConfig *Config
	once         sync.Once
)

// LoadConfig 加载配置文件
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	once.Do(func() {
		globalConfig = &cfg
	})

	return &cfg, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return globalConfig
}
