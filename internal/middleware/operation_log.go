package middleware

import (
	"time"

	"madmin/server/internal/auth"
	"madmin/server/internal/model"
	"madmin/server/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OperationLog 操作日志中间件，只记录写操作
func OperationLog(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}

		startTime := time.Now()
		params := string(c.Body())
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get(fiber.HeaderUserAgent)

		err := c.Next()

		status := int8(1)
		errorMsg := ""
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			status = 0
			if err != nil {
				errorMsg = err.Error()
			}
		}

		entry := &model.OperationLog{
			UserID:    auth.GetUID(c),
			Method:    method,
			Path:      path,
			IP:        ip,
			UserAgent: userAgent,
			Params:    params,
			Status:    status,
			Duration:  time.Since(startTime).Milliseconds(),
			ErrorMsg:  errorMsg,
		}

		// 异步落库，不阻塞响应
		utils.SafeGo(func() {
			db.Create(entry)
		})

		return err
	}
}
