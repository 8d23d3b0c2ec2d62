package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDescribeClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		headers map[string]string
		want    ClientInfo
	}{
		{
			name: "desktop chrome behind proxy",
			headers: map[string]string{
				"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
				"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
			},
			want: ClientInfo{IP: "203.0.113.7", DeviceType: "desktop", Browser: "Chrome", OS: "Windows"},
		},
		{
			name: "iphone safari via real ip",
			headers: map[string]string{
				"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1",
				"X-Real-IP":  "198.51.100.4",
			},
			want: ClientInfo{IP: "198.51.100.4", DeviceType: "mobile", Browser: "Safari", OS: "iOS"},
		},
		{
			name: "curl with bad forwarded header",
			headers: map[string]string{
				"User-Agent":      "curl/8.4.0",
				"X-Forwarded-For": "not-an-ip",
			},
			want: ClientInfo{IP: "192.0.2.1", DeviceType: "desktop", Browser: "API client", OS: "Other"},
		},
		{
			name: "no user agent",
			want: ClientInfo{IP: "192.0.2.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			got := DescribeClient(c)
			tt.want.UserAgent = tt.headers["User-Agent"]
			assert.Equal(t, tt.want, got)
		})
	}
}
