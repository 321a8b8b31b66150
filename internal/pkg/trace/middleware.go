package trace

import (
	"github.com/labstack/echo/v4"
)

// HeaderTraceID 响应头中回写的 trace ID
const HeaderTraceID = "X-Trace-Id"

// maxTraceIDLen 客户端传入的 trace ID 上限，超长或含非法字符时重新生成
const maxTraceIDLen = 64

// Middleware 为每个请求确定 trace ID，写入 request context 并回写到响应头
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			traceID := ExtractFromHeader(req.Header)
			if !validTraceID(traceID) {
				traceID = GenerateTraceID()
			}

			c.SetRequest(req.WithContext(WithTraceID(req.Context(), traceID)))
			c.Response().Header().Set(HeaderTraceID, traceID)
			return next(c)
		}
	}
}

// validTraceID 只接受字母数字与 - _ .，避免把任意客户端输入写进日志和响应头
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch b := id[i]; {
		case b >= '0' && b <= '9', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		case b == '-', b == '_', b == '.':
		default:
			return false
		}
	}
	return true
}
