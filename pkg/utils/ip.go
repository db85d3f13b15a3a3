package utils

import (
	"net"
	"strings"
)

// IsInternalIP 判断是否为内网IP
func IsInternalIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return true
	}
	return false
}

// ResolveIPLocation 解析IP归属地（尽力而为，失败返回未知）
func ResolveIPLocation(ip string) string {
	if ip == "" {
		return "未知"
	}
	if IsInternalIP(ip) {
		return "内网IP"
	}
	return "未知"
}

// FirstIP 从逗号分隔的IP列表(如 X-Forwarded-For)中取第一个
func FirstIP(ips string) string {
	if idx := strings.IndexByte(ips, ','); idx >= 0 {
		return strings.TrimSpace(ips[:idx])
	}
	return strings.TrimSpace(ips)
}
