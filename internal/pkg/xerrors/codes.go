// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制

	// 2xxxxx: 认证相关错误码
	CodeAuthenticationFailed ErrorCode = 200001 // 认证失败
	CodeInvalidToken         ErrorCode = 200002 // 无效令牌
	CodeTokenExpired         ErrorCode = 200003 // 令牌过期

	// 3xxxxx: 权限相关错误码
	CodePermissionDenied ErrorCode = 300001 // 权限不足

	// 6xxxxx: 业务逻辑错误码
	CodeBusinessLogicError  ErrorCode = 600001 // 业务逻辑错误
	CodeDataIntegrityError  ErrorCode = 600002 // 数据完整性错误
	CodeOperationNotAllowed ErrorCode = 600003 // 操作不被允许

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeDatabaseError        ErrorCode = 700003 // 数据库错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误

	// 8xxxxx: 游戏业务错误码
	// 角色相关 (80xxxx)
	CodeCharacterNotFound     ErrorCode = 800001 // 角色不存在
	CodeCharacterLimitReached ErrorCode = 800002 // 角色数量已达上限
	CodeCharacterNameExists   ErrorCode = 800003 // 角色名已存在

	// 关卡与战斗会话 (81xxxx)
	CodeInvalidChapterStage ErrorCode = 810001 // 章节/关卡超出范围
	CodeStageLocked         ErrorCode = 810002 // 关卡未解锁
	CodeInvalidSessionToken ErrorCode = 810003 // 战斗会话令牌无效
)

// -----------------------------------------------------------------------------
// HTTP 状态码常量定义
// -----------------------------------------------------------------------------
const (
	HTTPStatusOK = 200

	HTTPStatusBadRequest      = 400
	HTTPStatusUnauthorized    = 401
	HTTPStatusForbidden       = 403
	HTTPStatusNotFound        = 404
	HTTPStatusConflict        = 409
	HTTPStatusTooManyRequests = 429

	HTTPStatusInternalServerError = 500
	HTTPStatusServiceUnavailable  = 503
)

// -----------------------------------------------------------------------------
// 错误消息映射
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodeAuthenticationFailed: "认证失败",
	CodeInvalidToken:         "无效令牌",
	CodeTokenExpired:         "令牌过期",

	CodePermissionDenied: "权限不足",

	CodeBusinessLogicError:  "业务逻辑错误",
	CodeDataIntegrityError:  "数据完整性错误",
	CodeOperationNotAllowed: "操作不被允许",

	CodeExternalServiceError: "外部服务错误",
	CodeDatabaseError:        "数据库错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",

	CodeCharacterNotFound:     "角色不存在",
	CodeCharacterLimitReached: "角色数量已达上限",
	CodeCharacterNameExists:   "角色名已被使用",

	CodeInvalidChapterStage: "章节或关卡超出范围",
	CodeStageLocked:         "关卡未解锁",
	CodeInvalidSessionToken: "无效的战斗会话令牌",
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	switch {
	case code == CodeSuccess:
		return HTTPStatusOK
	case code >= 200000 && code < 300000:
		return HTTPStatusUnauthorized
	case code >= 300000 && code < 400000:
		return HTTPStatusForbidden
	case code == CodeResourceNotFound, code == CodeCharacterNotFound:
		return HTTPStatusNotFound
	case code == CodeDuplicateResource, code == CodeCharacterNameExists:
		return HTTPStatusConflict
	case code == CodeRateLimitExceeded:
		return HTTPStatusTooManyRequests
	case code == CodeStageLocked:
		return HTTPStatusForbidden
	case code == CodeInvalidParams, code == CodeInvalidRequest:
		return HTTPStatusBadRequest
	case code >= 600000 && code < 700000:
		return HTTPStatusBadRequest
	case code >= 700000 && code < 800000:
		return HTTPStatusServiceUnavailable
	case code >= 800000 && code < 900000:
		return HTTPStatusBadRequest
	default:
		return HTTPStatusInternalServerError
	}
}

// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 200000 && code < 300000:
		return "authentication"
	case code >= 300000 && code < 400000:
		return "authorization"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 700000 && code < 800000:
		return "external"
	case code >= 800000 && code < 900000:
		return "game"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code >= 100002 && code <= 100003:
		return LevelWarn
	case code >= 800000 && code < 900000:
		return LevelWarn
	case code >= 700001 && code < 800000:
		return LevelCritical
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
func isRetryableByCode(code ErrorCode) bool {
	switch code {
	case CodeInternalError, CodeExternalServiceError, CodeDatabaseError,
		CodeCacheError, CodeMessageQueueError, CodeRateLimitExceeded:
		return true
	default:
		return false
	}
}
