package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-backend/internal/pkg/ctxkey"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/validator"
	"rpg-backend/internal/pkg/xerrors"
)

var testSecret = []byte("test-secret")

const (
	ownerID     = "user-1"
	characterID = "6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b"
)

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func signToken(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(sub string) GameClaims {
	now := time.Now()
	return GameClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}
}

func newAuthServer(cfg AuthConfig) *echo.Echo {
	e := echo.New()
	writer := response.NewResponseHandler(log.Discard(), "test")
	e.GET("/me", func(c echo.Context) error {
		user, err := GetCurrentUser(c)
		if err != nil {
			return response.EchoError(c, writer, err)
		}
		if ctxkey.GetString(c.Request().Context(), ctxkey.UserID) != user.UserID {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, user.Source+":"+user.UserID)
	}, AuthMiddleware(cfg, writer, log.Discard()))
	return e
}

func TestAuthMiddleware(t *testing.T) {
	expired := validClaims(ownerID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	legacy := validClaims("")
	legacy.UserID = "legacy-user"

	tests := []struct {
		name       string
		cfg        AuthConfig
		header     map[string]string
		wantStatus int
		wantBody   string
		wantCode   xerrors.ErrorCode
	}{
		{
			name:       "有效 Bearer",
			cfg:        AuthConfig{JWTSecret: testSecret},
			header:     map[string]string{"Authorization": "Bearer " + signToken(t, validClaims(ownerID), jwt.SigningMethodHS256, testSecret)},
			wantStatus: http.StatusOK,
			wantBody:   "bearer:" + ownerID,
		},
		{
			name:       "旧令牌使用 user_id 声明",
			cfg:        AuthConfig{JWTSecret: testSecret},
			header:     map[string]string{"Authorization": "Bearer " + signToken(t, legacy, jwt.SigningMethodHS256, testSecret)},
			wantStatus: http.StatusOK,
			wantBody:   "bearer:legacy-user",
		},
		{
			name:       "过期令牌",
			cfg:        AuthConfig{JWTSecret: testSecret},
			header:     map[string]string{"Authorization": "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, testSecret)},
			wantStatus: http.StatusUnauthorized,
			wantCode:   xerrors.CodeTokenExpired,
		},
		{
			name:       "签名密钥错误",
			cfg:        AuthConfig{JWTSecret: testSecret},
			header:     map[string]string{"Authorization": "Bearer " + signToken(t, validClaims(ownerID), jwt.SigningMethodHS256, []byte("other"))},
			wantStatus: http.StatusUnauthorized,
			wantCode:   xerrors.CodeInvalidToken,
		},
		{
			name:       "拒绝非 HS256 算法",
			cfg:        AuthConfig{JWTSecret: testSecret},
			header:     map[string]string{"Authorization": "Bearer " + signToken(t, validClaims(ownerID), jwt.SigningMethodHS512, testSecret)},
			wantStatus: http.StatusUnauthorized,
			wantCode:   xerrors.CodeInvalidToken,
		},
		{
			name:       "Authorization 格式错误",
			cfg:        AuthConfig{JWTSecret: testSecret, TrustGatewayHeader: true},
			header:     map[string]string{"Authorization": "Basic abc", "X-User-ID": ownerID},
			wantStatus: http.StatusUnauthorized,
			wantCode:   xerrors.CodeInvalidToken,
		},
		{
			name:       "网关头",
			cfg:        AuthConfig{TrustGatewayHeader: true},
			header:     map[string]string{"X-User-ID": ownerID},
			wantStatus: http.StatusOK,
			wantBody:   "gateway:" + ownerID,
		},
		{
			name:       "未开启网关信任时忽略 X-User-ID",
			cfg:        AuthConfig{JWTSecret: testSecret},
			header:     map[string]string{"X-User-ID": ownerID},
			wantStatus: http.StatusUnauthorized,
			wantCode:   xerrors.CodeAuthenticationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAuthServer(tt.cfg)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode.ToInt(), decode(t, rec).Code)
			}
		})
	}
}

type stubOwnership struct {
	owner string
	err   error
}

func (s stubOwnership) EnsureOwned(_ context.Context, userID, charID string) error {
	if s.err != nil {
		return s.err
	}
	if userID != s.owner || charID != characterID {
		return xerrors.NewCharacterNotFoundError(charID)
	}
	return nil
}

func TestCharacterMiddleware(t *testing.T) {
	writer := response.NewResponseHandler(log.Discard(), "test")

	newServer := func(owner CharacterOwnership) *echo.Echo {
		e := echo.New()
		g := e.Group("/characters/:character_id",
			AuthMiddleware(AuthConfig{TrustGatewayHeader: true}, writer, log.Discard()),
			validator.UUIDParams(writer, "character_id"),
			CharacterMiddleware(owner, writer, log.Discard()))
		g.GET("/ping", func(c echo.Context) error {
			id, err := GetCurrentCharacterID(c)
			require.NoError(t, err)
			return c.String(http.StatusOK, id)
		})
		return e
	}

	do := func(e *echo.Echo, user, charID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/characters/"+charID+"/ping", nil)
		req.Header.Set("X-User-ID", user)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	e := newServer(stubOwnership{owner: ownerID})

	rec := do(e, ownerID, characterID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, characterID, rec.Body.String())

	rec = do(e, "intruder", characterID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, xerrors.CodeCharacterNotFound.ToInt(), decode(t, rec).Code)

	rec = do(e, ownerID, "not-a-uuid")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, xerrors.CodeResourceNotFound.ToInt(), decode(t, rec).Code)

	failing := newServer(stubOwnership{err: xerrors.NewDatabaseError("select", "characters", errors.New("down"))})
	rec = do(failing, ownerID, characterID)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestErrorAndRecoveryMiddleware(t *testing.T) {
	writer := response.NewResponseHandler(log.Discard(), "test")
	e := echo.New()
	e.Use(RecoveryMiddleware(writer, log.Discard()), ErrorMiddleware(writer, log.Discard()))
	e.GET("/app", func(echo.Context) error { return xerrors.NewStageLockedError(1, 2) })
	e.GET("/plain", func(echo.Context) error { return errors.New("boom") })
	e.GET("/panic", func(echo.Context) error { panic("oops") })
	e.GET("/bad", func(echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "bad") })

	tests := []struct {
		path   string
		status int
		code   xerrors.ErrorCode
	}{
		{"/app", http.StatusForbidden, xerrors.CodeStageLocked},
		{"/plain", http.StatusInternalServerError, xerrors.CodeInternalError},
		{"/panic", http.StatusInternalServerError, xerrors.CodeInternalError},
		{"/bad", http.StatusBadRequest, xerrors.CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code.ToInt(), decode(t, rec).Code)
		})
	}
}

func TestSanitizeHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("X-User-ID", "u1")
	h.Set("Accept", "application/json")

	out := sanitizeHeaders(h, DefaultLoggingConfig().SensitiveHeaders)
	assert.Equal(t, redacted, out["Authorization"])
	assert.Equal(t, redacted, out["X-User-Id"])
	assert.Equal(t, "application/json", out["Accept"])
}
