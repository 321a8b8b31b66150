package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"rpg-backend/internal/pkg/xerrors"
)

// RateLimitMiddleware 按客户端 IP 的全局限流，每秒 perSecond 个请求
func RateLimitMiddleware(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 100
	}
	config := middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(perSecond)),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return xerrors.FromCode(xerrors.CodeInvalidRequest).
				WithService("echo-middleware", "rate_limiter").
				WithMetadata("client_ip", c.RealIP())
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return xerrors.FromCode(xerrors.CodeRateLimitExceeded).
				WithService("echo-middleware", "rate_limiter").
				WithMetadata("client_ip", identifier)
		},
	}

	return middleware.RateLimiterWithConfig(config)
}
