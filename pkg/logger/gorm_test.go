package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewGormLoggerThreshold(t *testing.T) {
	l := NewGormLogger(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, l.SlowThreshold)

	// 未配置时回退到默认阈值
	l = NewGormLogger(0)
	assert.Equal(t, defaultSlowThreshold, l.SlowThreshold)
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(0)
	silent := l.LogMode(gormlogger.Silent)

	// LogMode 返回副本，不影响原实例
	assert.Equal(t, gormlogger.Info, l.LogLevel)
	assert.Equal(t, gormlogger.Silent, silent.(*GormLogger).LogLevel)
}
