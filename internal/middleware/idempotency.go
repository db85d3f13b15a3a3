package middleware

import (
	"errors"
	"fmt"
	"net"
	"time"

	"madmin/server/pkg/cachekey"
	"madmin/server/pkg/response"
	"madmin/server/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// 幂等标记值："0"处理中，"1"已完成
const (
	idempotenceMarkPending = "0"
	idempotenceMarkDone    = "1"
)

// IdempotencyOption 幂等中间件配置
type IdempotencyOption struct {
	TTL            time.Duration // 标记存活时间，默认60秒
	PendingMessage string        // 处理中的提示
	DoneMessage    string        // 重复提交的提示
	Conflict       fiber.Handler // 自定义冲突处理，默认返回409
}

func (o *IdempotencyOption) fill() {
	if o.TTL <= 0 {
		o.TTL = time.Minute
	}
	if o.PendingMessage == "" {
		o.PendingMessage = "相同请求正在处理中，请稍后再试"
	}
	if o.DoneMessage == "" {
		o.DoneMessage = "请求重复，请勿重复提交"
	}
}

// fingerprint 计算请求指纹：显式幂等键优先，否则对请求内容与来源哈希。
// 识别不出调用方时返回空串，表示放弃幂等保护。
func fingerprint(c *fiber.Ctx) string {
	if key := c.Get("x-idempotence-key"); key != "" {
		return key
	}
	// 调用方标识：优先前端生成的设备标识，退化为UA+IP
	caller := c.Get("x-uuid")
	if caller == "" {
		ua := c.Get(fiber.HeaderUserAgent)
		ip := c.IP()
		if parsed := net.ParseIP(ip); ua == "" && (parsed == nil || parsed.IsUnspecified()) {
			return ""
		}
		caller = ua + "|" + ip
	}
	payload := fmt.Sprintf("%s|%s|%s|%s|%s",
		c.Method(), c.Path(), string(c.Request().URI().QueryString()), string(c.Body()), caller)
	return utils.SHA256(payload)
}

// succeeded 业务是否成功：处理器报错、HTTP错误状态或统一信封中的业务错误码都算失败
func succeeded(c *fiber.Ctx, err error) bool {
	if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
		return false
	}
	var body response.Response
	if err := utils.Unmarshal(c.Response().Body(), &body); err != nil {
		return true
	}
	return body.Code == response.CodeSuccess
}

// Idempotency 幂等守卫：同一请求在标记有效期内只允许执行一次。
// 只拦截写操作，读请求天然幂等。
func Idempotency(rdb *redis.Client, opt IdempotencyOption) fiber.Handler {
	opt.fill()
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}

		fp := fingerprint(c)
		if fp == "" {
			return c.Next()
		}

		key := cachekey.Idempotence(fp)
		ok, err := rdb.SetNX(c.Context(), key, idempotenceMarkPending, opt.TTL).Result()
		if err != nil {
			return response.ServerError(c, "")
		}
		if !ok {
			if opt.Conflict != nil {
				return opt.Conflict(c)
			}
			mark, err := rdb.Get(c.Context(), key).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return response.ServerError(c, "")
			}
			if mark == idempotenceMarkPending {
				return response.Conflict(c, opt.PendingMessage)
			}
			return response.Conflict(c, opt.DoneMessage)
		}

		err = c.Next()

		// 失败时释放标记允许立即重试，成功则保留剩余时长内拒绝重放
		if !succeeded(c, err) {
			if delErr := rdb.Del(c.Context(), key).Err(); delErr != nil {
				return delErr
			}
			return err
		}
		if setErr := rdb.Set(c.Context(), key, idempotenceMarkDone, redis.KeepTTL).Err(); setErr != nil {
			return setErr
		}
		return nil
	}
}
