// File: internal/pkg/i18n/i18n.go
package i18n

import (
	"context"
	"strings"

	"rpg-backend/internal/pkg/ctxkey"

	"golang.org/x/text/language"
)

var (
	// DefaultLanguage 客户端默认语言
	DefaultLanguage = language.English
	// SupportedLanguages 支持的语言列表，首项为匹配失败时的回退
	SupportedLanguages = []language.Tag{
		language.English,
		language.Chinese,
	}
	matcher = language.NewMatcher(SupportedLanguages)
)

// WithLanguage 在 context 中设置语言偏好
func WithLanguage(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, ctxkey.Language, lang)
}

// GetLanguage 从 context 中获取语言偏好
func GetLanguage(ctx context.Context) language.Tag {
	if lang, ok := ctx.Value(ctxkey.Language).(language.Tag); ok {
		return lang
	}
	return DefaultLanguage
}

// ParseAcceptLanguage 解析 Accept-Language 头部
// 例如: "zh-CN,zh;q=0.9,en;q=0.8"
func ParseAcceptLanguage(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	return match(tags...)
}

// ParseLanguageCode 从语言代码解析 Tag，支持 "zh", "zh-CN", "en", "en-US" 等
func ParseLanguageCode(code string) language.Tag {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage
	}

	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	return match(tag)
}

// match 将匹配结果收敛到 SupportedLanguages 中的基础标签
func match(tags ...language.Tag) language.Tag {
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return SupportedLanguages[index]
}
