package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

// AllowPrivateIP returns an AllowFunc that matches requests from private or
// loopback addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowPaths matches requests whose route is one of paths.
func AllowPaths(paths ...string) AllowFunc {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c *gin.Context) bool {
		_, ok := set[normalizePath(c)]
		return ok
	}
}

// PrivateOnly answers 403 to callers outside private networks.
func PrivateOnly() gin.HandlerFunc {
	allow := AllowPrivateIP()
	return func(c *gin.Context) {
		if !allow(c) {
			response.Error[any](c, http.StatusForbidden, "forbidden", response.ErrorBody{Code: "forbidden"})
			return
		}
		c.Next()
	}
}
