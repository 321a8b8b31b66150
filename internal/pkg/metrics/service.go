package metrics

import (
	"cmp"
	"sync/atomic"
)

const defaultServiceName = "unknown"

// serviceName 进程级 service 标签，由模块在 OnInit 中设置一次
var serviceName atomic.Pointer[string]

// SetServiceName 设置 service 标签，空串恢复为 "unknown"
func SetServiceName(name string) {
	name = cmp.Or(name, defaultServiceName)
	serviceName.Store(&name)
}

// GetServiceName 当前 service 标签
func GetServiceName() string {
	if p := serviceName.Load(); p != nil {
		return *p
	}
	return defaultServiceName
}

// normalizeServiceName 记录指标时未显式传入 service 则使用进程级标签
func normalizeServiceName(name string) string {
	return cmp.Or(name, GetServiceName())
}
