package response

import (
	"github.com/labstack/echo/v4"

	"rpg-backend/internal/pkg/xerrors"
)

const malformedBodyMessage = "请求格式错误"

// EchoOK 成功响应
func EchoOK[T any](c echo.Context, h Writer, data T) error {
	return h.WriteSuccess(c.Request().Context(), c.Response().Writer, data)
}

// EchoError 按 AppError 的错误码写出状态码与响应体
func EchoError(c echo.Context, h Writer, err error) error {
	return h.WriteError(c.Request().Context(), c.Response().Writer, err)
}

// EchoBadRequest 参数错误
func EchoBadRequest(c echo.Context, h Writer, message string) error {
	return EchoError(c, h, badRequest(message))
}

// EchoNotFound 资源不存在
func EchoNotFound(c echo.Context, h Writer, resource, identifier string) error {
	return EchoError(c, h, xerrors.NewNotFoundError(resource, identifier))
}

// EchoBind 绑定请求体并执行 echo.Validator 校验。
// 请求体无法解析时返回参数错误，校验失败时原样返回 Validator 的错误，调用方交给 EchoError 即可。
func EchoBind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		appErr := badRequest(malformedBodyMessage)
		appErr.Err = err
		return appErr
	}
	return c.Validate(req)
}

func badRequest(message string) *xerrors.AppError {
	err := xerrors.NewValidationError("request", message)
	err.Message = message
	return err
}
