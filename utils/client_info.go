package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientInfo describes where a request came from.
type ClientInfo struct {
	IP         string
	UserAgent  string
	DeviceType string
	Browser    string
	OS         string
}

// DescribeClient collects the caller's address and a coarse reading of its user agent.
func DescribeClient(c *gin.Context) ClientInfo {
	ua := c.GetHeader("User-Agent")
	return ClientInfo{
		IP:         ClientIP(c),
		UserAgent:  ua,
		DeviceType: parseDeviceType(ua),
		Browser:    parseBrowser(ua),
		OS:         parseOS(ua),
	}
}

// ClientIP gets the real client IP (handles proxies)
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return c.ClientIP()
}

func parseDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case ua == "":
		return ""
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android"):
		return "mobile"
	}
	return "desktop"
}

func parseBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case ua == "":
		return ""
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "curl"), strings.Contains(ua, "postman"):
		return "API client"
	}
	return "Other"
}

func parseOS(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case ua == "":
		return ""
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		return "iOS"
	case strings.Contains(ua, "mac os"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "linux"):
		return "Linux"
	}
	return "Other"
}
