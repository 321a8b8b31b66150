package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"rpg-backend/internal/pkg/ctxkey"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/xerrors"
)

// CharacterOwnership 由角色服务实现
type CharacterOwnership interface {
	EnsureOwned(ctx context.Context, userID, characterID string) error
}

// CharacterMiddleware 校验路径中的 :character_id 属于当前用户
// 需要在 AuthMiddleware 之后使用
func CharacterMiddleware(owner CharacterOwnership, respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, err := GetCurrentUserID(c)
			if err != nil {
				logger.WarnContext(ctx, "CharacterMiddleware: 未找到 user_id，请确保 AuthMiddleware 在之前执行")
				return respWriter.WriteError(ctx, c.Response().Writer, err)
			}

			characterID := c.Param("character_id")
			if characterID == "" {
				return respWriter.WriteError(ctx, c.Response().Writer,
					xerrors.NewValidationError("character_id", "缺少角色 ID"))
			}

			// 他人的角色与不存在的角色返回相同错误
			if err := owner.EnsureOwned(ctx, userID, characterID); err != nil {
				if appErr, ok := xerrors.As(err); ok {
					appErr.WithService("middleware", "character")
				}
				return respWriter.WriteError(ctx, c.Response().Writer, err)
			}

			ctx = ctxkey.WithValue(ctx, ctxkey.CharacterID, characterID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(string(ctxkey.CharacterID), characterID)

			logger.DebugContext(ctx, "角色上下文设置成功",
				log.String("user_id", userID),
				log.String("character_id", characterID),
			)
			return next(c)
		}
	}
}

// GetCurrentCharacterID 从 Echo Context 中获取已通过归属校验的角色 ID
func GetCurrentCharacterID(c echo.Context) (string, error) {
	characterID, ok := c.Get(string(ctxkey.CharacterID)).(string)
	if !ok || characterID == "" {
		return "", xerrors.New(xerrors.CodeInternalError, "未找到当前角色信息")
	}
	return characterID, nil
}
