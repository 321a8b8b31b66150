package middleware

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"rpg-backend/internal/pkg/ctxkey"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/xerrors"
)

// 身份来源
const (
	AuthSourceBearer  = "bearer"
	AuthSourceGateway = "gateway"
)

// AuthConfig 认证中间件配置
type AuthConfig struct {
	// JWTSecret HS256 签名密钥，为空时不接受 Bearer 令牌
	JWTSecret []byte
	// TrustGatewayHeader 是否信任网关注入的 X-User-ID
	TrustGatewayHeader bool
}

// GameClaims 令牌声明，用户 ID 取 sub，兼容旧令牌的 user_id
type GameClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// CurrentUser 当前请求的用户
type CurrentUser struct {
	UserID string
	Source string
}

// AuthMiddleware 优先校验 Authorization: Bearer，其次读取网关传递的 X-User-ID
func AuthMiddleware(cfg AuthConfig, respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			user, err := authenticate(c, cfg)
			if err != nil {
				logger.WarnContext(ctx, "认证失败", log.Any("error", err))
				return respWriter.WriteError(ctx, c.Response().Writer, err)
			}

			ctx = ctxkey.WithValue(ctx, ctxkey.UserID, user.UserID)
			ctx = ctxkey.WithValue(ctx, ctxkey.AuthSource, user.Source)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Set(string(ctxkey.CurrentUser), user)
			c.Set(string(ctxkey.UserID), user.UserID)

			logger.DebugContext(ctx, "用户认证成功",
				log.String("user_id", user.UserID),
				log.String("auth_source", user.Source),
			)
			return next(c)
		}
	}
}

func authenticate(c echo.Context, cfg AuthConfig) (*CurrentUser, *xerrors.AppError) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return nil, xerrors.New(xerrors.CodeInvalidToken, "Authorization 格式错误").
				WithService("middleware", "auth")
		}
		userID, err := ParseBearerToken(strings.TrimSpace(token), cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return &CurrentUser{UserID: userID, Source: AuthSourceBearer}, nil
	}

	if cfg.TrustGatewayHeader {
		if userID := c.Request().Header.Get("X-User-ID"); userID != "" {
			return &CurrentUser{UserID: userID, Source: AuthSourceGateway}, nil
		}
	}

	return nil, xerrors.New(xerrors.CodeAuthenticationFailed, "未授权访问: 缺少用户身份信息").
		WithService("middleware", "auth")
}

// ParseBearerToken 校验 HS256 令牌并返回用户 ID
func ParseBearerToken(token string, secret []byte) (string, *xerrors.AppError) {
	if len(secret) == 0 {
		return "", xerrors.New(xerrors.CodeInvalidToken, "未配置令牌密钥").
			WithService("middleware", "auth")
	}

	var claims GameClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", xerrors.FromCode(xerrors.CodeTokenExpired).WithService("middleware", "auth")
	case err != nil:
		return "", xerrors.NewWithError(xerrors.CodeInvalidToken, "无效令牌", err).
			WithService("middleware", "auth")
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return "", xerrors.New(xerrors.CodeInvalidToken, "令牌缺少用户标识").
			WithService("middleware", "auth")
	}
	return userID, nil
}

// GetCurrentUser 从 Echo Context 中获取当前用户
func GetCurrentUser(c echo.Context) (*CurrentUser, error) {
	user, ok := c.Get(string(ctxkey.CurrentUser)).(*CurrentUser)
	if !ok || user == nil {
		return nil, xerrors.New(xerrors.CodeAuthenticationFailed, "未找到用户信息")
	}
	return user, nil
}

// GetCurrentUserID 从 Echo Context 中获取当前用户 ID
func GetCurrentUserID(c echo.Context) (string, error) {
	user, err := GetCurrentUser(c)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}
