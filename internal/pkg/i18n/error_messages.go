// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"rpg-backend/internal/pkg/xerrors"

	"golang.org/x/text/language"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "OK"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求频率限制", language.English: "Rate limit exceeded"},

	xerrors.CodeAuthenticationFailed: {language.Chinese: "认证失败", language.English: "Authentication failed"},
	xerrors.CodeInvalidToken:         {language.Chinese: "无效令牌", language.English: "Invalid token"},
	xerrors.CodeTokenExpired:         {language.Chinese: "令牌过期", language.English: "Token expired"},

	xerrors.CodePermissionDenied: {language.Chinese: "权限不足", language.English: "Permission denied"},

	xerrors.CodeBusinessLogicError:  {language.Chinese: "业务逻辑错误", language.English: "Business logic error"},
	xerrors.CodeDataIntegrityError:  {language.Chinese: "数据完整性错误", language.English: "Data integrity error"},
	xerrors.CodeOperationNotAllowed: {language.Chinese: "操作不被允许", language.English: "Operation not allowed"},

	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeDatabaseError:        {language.Chinese: "数据库错误", language.English: "Database error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},

	// 8xxxxx: 游戏业务错误码
	xerrors.CodeCharacterNotFound:     {language.Chinese: "角色不存在", language.English: "Character not found"},
	xerrors.CodeCharacterLimitReached: {language.Chinese: "角色数量已达上限", language.English: "Character limit reached"},
	xerrors.CodeCharacterNameExists:   {language.Chinese: "角色名已被使用", language.English: "You already have a character with this name"},
	xerrors.CodeInvalidChapterStage:   {language.Chinese: "章节或关卡超出范围", language.English: "Invalid chapter or stage"},
	xerrors.CodeStageLocked:           {language.Chinese: "关卡未解锁", language.English: "Stage not unlocked"},
	xerrors.CodeInvalidSessionToken:   {language.Chinese: "无效的战斗会话令牌", language.English: "Invalid session token"},
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		if msg, ok := messages[DefaultLanguage]; ok {
			return msg
		}
	}
	if lang == language.Chinese {
		return "未知错误"
	}
	return "Unknown error"
}
