package middleware

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"rpg-backend/internal/pkg/ctxkey"
	"rpg-backend/internal/pkg/log"
)

const redacted = "***REDACTED***"

// LoggingConfig 请求日志配置
type LoggingConfig struct {
	SkipPaths []string
	// Detailed 记录查询串、UA 与脱敏后的请求头
	Detailed bool
	// LogRequestBody 仅在 Detailed 时生效，战斗日志可能较大，默认关闭
	LogRequestBody   bool
	MaxBodySize      int64
	SensitiveHeaders []string
}

// DefaultLoggingConfig 默认配置
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:   []string{"/health", "/metrics", "/swagger"},
		MaxBodySize: 10 * 1024,
		SensitiveHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderCookie,
			"X-User-ID",
			"X-Api-Key",
		},
	}
}

// LoggingMiddleware 使用默认配置
func LoggingMiddleware(logger log.Logger) echo.MiddlewareFunc {
	return LoggingMiddlewareWithConfig(logger, DefaultLoggingConfig())
}

// LoggingMiddlewareWithConfig 请求完成后按状态码选择日志级别
func LoggingMiddlewareWithConfig(logger log.Logger, cfg LoggingConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if shouldSkip(req.URL.Path, cfg.SkipPaths) {
				return next(c)
			}

			start := time.Now()
			fields := []any{
				log.String("method", req.Method),
				log.String("path", req.URL.Path),
				log.String("client_ip", c.RealIP()),
			}
			if cfg.Detailed {
				fields = append(fields,
					log.String("query", req.URL.RawQuery),
					log.String("user_agent", req.UserAgent()),
					log.Any("headers", sanitizeHeaders(req.Header, cfg.SensitiveHeaders)),
				)
				if cfg.LogRequestBody {
					fields = append(fields, log.String("request_body", readAndRestoreBody(c, cfg.MaxBodySize)))
				}
			}

			err := next(c)

			// 认证中间件在内层写入 user_id，这里重新读取请求 context
			ctx := c.Request().Context()
			status := c.Response().Status
			fields = append(fields,
				log.String("route", c.Path()),
				log.Int("status_code", status),
				log.Duration("duration", time.Since(start).Milliseconds()),
				log.Int64("response_size", c.Response().Size),
			)
			if characterID := ctxkey.GetString(ctx, ctxkey.CharacterID); characterID != "" {
				fields = append(fields, log.String("character_id", characterID))
			}

			switch {
			case err != nil:
				fields = append(fields, log.Any("error", err))
				logger.ErrorContext(ctx, "请求处理出错", fields...)
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(ctx, "请求完成（服务器错误）", fields...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(ctx, "请求完成（客户端错误）", fields...)
			default:
				logger.InfoContext(ctx, "请求完成", fields...)
			}
			return err
		}
	}
}

func shouldSkip(path string, skipPaths []string) bool {
	return slices.ContainsFunc(skipPaths, func(p string) bool {
		return strings.HasPrefix(path, p)
	})
}

// sanitizeHeaders 敏感 Header 只输出占位符
func sanitizeHeaders(headers http.Header, sensitive []string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) == 0 {
			continue
		}
		if slices.ContainsFunc(sensitive, func(s string) bool { return strings.EqualFold(k, s) }) {
			out[k] = redacted
			continue
		}
		out[k] = v[0]
	}
	return out
}

func readAndRestoreBody(c echo.Context, maxSize int64) string {
	req := c.Request()
	if req.Body == nil {
		return ""
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	if int64(len(body)) > maxSize {
		return string(body[:maxSize]) + "... (truncated)"
	}
	return string(body)
}
