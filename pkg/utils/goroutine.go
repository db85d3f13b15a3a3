package utils

import (
	"runtime/debug"

	"madmin/server/pkg/logger"

	"go.uber.org/zap"
)

// SafeGo 安全地启动一个 goroutine，自动捕获 panic 并记录日志
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
