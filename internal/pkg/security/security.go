// Package security 提供 HTTP 安全相关中间件
package security

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"rpg-backend/internal/pkg/trace"
)

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins  []string
	ExposeHeaders []string
}

// DefaultCORSConfig 移动客户端不依赖 cookie，不开启 AllowCredentials
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		ExposeHeaders: []string{trace.HeaderTraceID, "X-RateLimit-Remaining"},
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg CORSConfig) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"Accept-Language",
			trace.HeaderTraceID,
			"X-Request-Id",
			"X-User-ID",
		},
		ExposeHeaders: cfg.ExposeHeaders,
	})
}

// HeadersMiddleware JSON API 的基础安全响应头
func HeadersMiddleware() echo.MiddlewareFunc {
	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	})
}
