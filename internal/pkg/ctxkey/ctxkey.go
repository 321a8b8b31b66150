package ctxkey

import "context"

// ContextKey 统一的 context key 类型
type ContextKey string

const (
	// Language 语言偏好
	Language ContextKey = "language"

	// TraceID 请求追踪 ID
	TraceID ContextKey = "trace_id"

	// HTTPMethod HTTP 请求方法
	HTTPMethod ContextKey = "http_method"

	// UserID 用户 ID (由认证中间件设置)
	UserID ContextKey = "user_id"

	// CurrentUser 认证中间件写入 echo.Context 的用户对象
	CurrentUser ContextKey = "current_user"

	// AuthSource 身份来源: bearer / gateway
	AuthSource ContextKey = "auth_source"

	// CharacterID 当前操作的角色 ID (由角色归属中间件设置)
	CharacterID ContextKey = "character_id"
)

// WithValue 在 context 中设置指定 key 的值
func WithValue(ctx context.Context, key ContextKey, value interface{}) context.Context {
	return context.WithValue(ctx, key, value)
}

// GetString 从 context 中获取字符串类型的值
func GetString(ctx context.Context, key ContextKey) string {
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}
