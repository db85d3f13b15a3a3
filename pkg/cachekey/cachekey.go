package cachekey

import "fmt"

// Redis键统一前缀，避免与同实例其他业务冲突
const prefix = "madmin"

// AuthToken 在线用户的访问令牌指针键
func AuthToken(uid uint) string {
	return fmt.Sprintf("%s:auth:token:%d", prefix, uid)
}

// AuthPV 用户密码版本键
func AuthPV(uid uint) string {
	return fmt.Sprintf("%s:auth:pv:%d", prefix, uid)
}

// AuthPerm 用户权限缓存键
func AuthPerm(uid uint) string {
	return fmt.Sprintf("%s:auth:perm:%d", prefix, uid)
}

// AuthTokenPattern 扫描在线用户令牌指针的匹配模式
func AuthTokenPattern() string {
	return prefix + ":auth:token:*"
}

// Blacklist 令牌黑名单键
func Blacklist(token string) string {
	return fmt.Sprintf("%s:auth:blacklist:%s", prefix, token)
}

// Idempotence 幂等标记键
func Idempotence(key string) string {
	return fmt.Sprintf("%s:idempotence:%s", prefix, key)
}

// Captcha 图形验证码键
func Captcha(id string) string {
	return fmt.Sprintf("%s:captcha:img:%s", prefix, id)
}

// PermRefreshLock 全量权限刷新的分布式锁键
func PermRefreshLock() string {
	return prefix + ":lock:perm-refresh"
}

// CleanerLock 定时清理任务的分布式锁键前缀
func CleanerLock() string {
	return prefix + ":lock:cleaner"
}
