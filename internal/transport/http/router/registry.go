package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// Module mounts a set of routes on the gated site group.
type Module interface{ Mount(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry collects modules for one engine. It is built per engine, so
// tests can mount a fresh set without sharing state.
type Registry struct {
	mods []Module
}

func (r *Registry) Register(mods ...Module) { r.mods = append(r.mods, mods...) }

// MountAll mounts every module in priority order; ties keep registration order.
func (r *Registry) MountAll(g *gin.RouterGroup) {
	mods := append([]Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
