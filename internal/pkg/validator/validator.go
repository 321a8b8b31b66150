package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/xerrors"
)

// CustomValidator 把 go-playground/validator 接入 echo
type CustomValidator struct {
	validator *validator.Validate
}

// New 创建 echo.Validator，注册游戏自定义规则
func New() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("character_name", validateCharacterName)
	return &CustomValidator{validator: v}
}

// Validate 实现 echo.Validator，失败时返回参数错误
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return xerrors.NewWithError(xerrors.CodeInvalidParams, "参数错误", err)
	}

	first := fieldErrs[0]
	appErr := xerrors.New(xerrors.CodeInvalidParams, translate(first))
	appErr.WithMetadata("field", first.Field())
	appErr.WithMetadata("tag", first.Tag())
	return appErr
}

// validateCharacterName 去除首尾空白后 1-50 个字符
func validateCharacterName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= 50
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "character_name":
		return fmt.Sprintf("%s must be 1-50 characters", field)
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}

// UUIDParams 校验指定路径参数为 UUID，不合法时按资源不存在处理
func UUIDParams(respWriter response.Writer, names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, name := range names {
				value := c.Param(name)
				if value == "" {
					continue
				}
				if _, err := uuid.Parse(value); err != nil {
					return response.EchoNotFound(c, respWriter, name, value)
				}
			}
			return next(c)
		}
	}
}
