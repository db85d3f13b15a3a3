package utils

import (
	"regexp"
	"strings"
)

// UserAgentInfo User-Agent 解析结果
type UserAgentInfo struct {
	Browser string
	Os      string
}

// ParseUserAgent 解析 User-Agent 字符串
func ParseUserAgent(ua string) UserAgentInfo {
	info := UserAgentInfo{
		Browser: "Unknown",
		Os:      "Unknown",
	}

	if ua == "" {
		return info
	}

	info.Browser = parseBrowser(ua)
	info.Os = parseOS(ua)

	return info
}

// parseBrowser 解析浏览器信息
func parseBrowser(ua string) string {
	ua = strings.ToLower(ua)

	// 按优先级检测浏览器（先检测特殊浏览器，再检测通用浏览器）
	browsers := []struct {
		keyword string
		name    string
		version *regexp.Regexp
	}{
		{"edg/", "Edge", regexp.MustCompile(`edg/(\d+)`)},
		{"opr/", "Opera", regexp.MustCompile(`opr/(\d+)`)},
		{"firefox/", "Firefox", regexp.MustCompile(`firefox/(\d+)`)},
		{"chrome/", "Chrome", regexp.MustCompile(`chrome/(\d+)`)},
		{"safari/", "Safari", regexp.MustCompile(`version/(\d+)`)},
		{"msie", "IE", regexp.MustCompile(`msie (\d+)`)},
		{"trident/", "IE", regexp.MustCompile(`rv:(\d+)`)},
	}

	for _, b := range browsers {
		if strings.Contains(ua, b.keyword) {
			if matches := b.version.FindStringSubmatch(ua); len(matches) > 1 {
				return b.name + " " + matches[1]
			}
			return b.name
		}
	}

	return "Unknown"
}

// parseOS 解析操作系统信息
func parseOS(ua string) string {
	windowsVersions := map[string]string{
		"windows nt 10.0": "Windows 10/11",
		"windows nt 6.3":  "Windows 8.1",
		"windows nt 6.2":  "Windows 8",
		"windows nt 6.1":  "Windows 7",
	}

	uaLower := strings.ToLower(ua)

	for pattern, name := range windowsVersions {
		if strings.Contains(uaLower, pattern) {
			return name
		}
	}

	if strings.Contains(uaLower, "mac os x") {
		return "macOS"
	}

	if strings.Contains(uaLower, "iphone") || strings.Contains(uaLower, "ipad") {
		return "iOS"
	}

	if strings.Contains(uaLower, "android") {
		return "Android"
	}

	if strings.Contains(uaLower, "linux") {
		return "Linux"
	}

	return "Unknown"
}
