// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"errors"
	"net/http"
	"time"

	"rpg-backend/internal/pkg/ctxkey"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware 记录 HTTP 方法到 context，并按路由模板采集请求指标
func Middleware(service string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := ctxkey.WithValue(req.Context(), ctxkey.HTTPMethod, req.Method)
			c.SetRequest(req.WithContext(ctx))

			if IsHealthCheckEndpoint(c.Path()) {
				return next(c)
			}

			DefaultHTTPMetrics.IncInProgress(service)
			defer DefaultHTTPMetrics.DecInProgress(service)

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			DefaultHTTPMetrics.RecordRequest(service, c.Path(), req.Method, status, time.Since(start))
			return err
		}
	}
}

// EchoHandler 暴露 /metrics 端点
func EchoHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
