package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace 所有指标的统一前缀
const Namespace = "rpg"

var defaultRegistry = &registryHolder{registerer: prometheus.DefaultRegisterer}

type registryHolder struct {
	mu         sync.RWMutex
	registerer prometheus.Registerer
}

// SetRegisterer 设置全局 Registerer，nil 时恢复为 prometheus 默认值
func SetRegisterer(r prometheus.Registerer) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.registerer = r
}

// GetRegisterer 返回当前的 Registerer
func GetRegisterer() prometheus.Registerer {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	if defaultRegistry.registerer == nil {
		return prometheus.DefaultRegisterer
	}
	return defaultRegistry.registerer
}
