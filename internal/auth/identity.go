package auth

import (
	"github.com/gofiber/fiber/v2"
)

// 请求上下文键
const (
	localsIdentityKey = "auth:identity"
	localsTokenKey    = "auth:raw_token"
)

// Identity 访问令牌解出的用户身份
type Identity struct {
	UID   uint   `json:"uid"`
	PV    int64  `json:"pv"`    // 密码版本
	Roles []uint `json:"roles"` // 角色ID列表
}

// SetIdentity 将身份存入请求上下文
func SetIdentity(c *fiber.Ctx, id *Identity, token string) {
	c.Locals(localsIdentityKey, id)
	c.Locals(localsTokenKey, token)
}

// GetIdentity 从请求上下文取出身份，未认证返回nil
func GetIdentity(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(localsIdentityKey).(*Identity)
	return id
}

// GetRawToken 从请求上下文取出原始令牌串
func GetRawToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localsTokenKey).(string)
	return token
}

// GetUID 从请求上下文取出用户ID，未认证返回0
func GetUID(c *fiber.Ctx) uint {
	if id := GetIdentity(c); id != nil {
		return id.UID
	}
	return 0
}
