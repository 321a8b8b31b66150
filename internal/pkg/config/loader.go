package config

import (
	"fmt"
	"os"
	"strings"
)

// GetEnvOrDefault 获取环境变量，不存在时返回默认值
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// SettingString 读取 mqant 模块 Settings 中的字符串项
// 环境变量已提供值时不覆盖
func SettingString(settings map[string]any, key, current string) string {
	if current != "" || settings == nil {
		return current
	}
	if v, ok := settings[key]; ok {
		return fmt.Sprint(v)
	}
	return current
}

// SanitizeConfigForLog 隐藏敏感配置项，用于日志输出
func SanitizeConfigForLog(config map[string]any) map[string]any {
	sanitized := make(map[string]any, len(config))
	for k, v := range config {
		if isSensitiveKey(k) {
			sanitized[k] = "***REDACTED***"
		} else {
			sanitized[k] = v
		}
	}
	return sanitized
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range []string{"password", "secret", "token", "credential", "private", "database_url"} {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}
