package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/xerrors"
)

// ErrorMiddleware 把 handler 返回但尚未写出的错误统一转换为响应
func ErrorMiddleware(respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil || c.Response().Committed {
				return err
			}

			ctx := c.Request().Context()

			if appErr, ok := xerrors.As(err); ok {
				return respWriter.WriteError(ctx, c.Response().Writer, appErr)
			}

			var he *echo.HTTPError
			if errors.As(err, &he) {
				return respWriter.WriteError(ctx, c.Response().Writer, convertEchoError(he))
			}

			logger.ErrorContext(ctx, "未处理的错误",
				log.Any("original_error", err),
				log.String("error_type", fmt.Sprintf("%T", err)),
			)
			appErr := xerrors.NewWithError(xerrors.CodeInternalError, "系统内部错误", err).
				WithService("echo-middleware", "error_handler")
			return respWriter.WriteError(ctx, c.Response().Writer, appErr)
		}
	}
}

// convertEchoError 路由未命中、方法不允许等框架错误转换为业务错误
func convertEchoError(he *echo.HTTPError) *xerrors.AppError {
	var code xerrors.ErrorCode
	switch he.Code {
	case http.StatusBadRequest:
		code = xerrors.CodeInvalidParams
	case http.StatusUnauthorized:
		code = xerrors.CodeAuthenticationFailed
	case http.StatusForbidden:
		code = xerrors.CodePermissionDenied
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		code = xerrors.CodeResourceNotFound
	case http.StatusConflict:
		code = xerrors.CodeDuplicateResource
	case http.StatusTooManyRequests:
		code = xerrors.CodeRateLimitExceeded
	default:
		return xerrors.FromCode(xerrors.CodeInternalError).
			WithMetadata("echo_code", he.Code).
			WithMetadata("echo_message", fmt.Sprintf("%v", he.Message))
	}
	return xerrors.FromCode(code).WithMetadata("echo_message", fmt.Sprintf("%v", he.Message))
}
