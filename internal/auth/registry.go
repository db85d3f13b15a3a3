package auth

import "sort"

// Registry 路由注册时收集的权限标识全集。
// 启动阶段一次性构建，之后只读，无需加锁。
type Registry struct {
	perms map[string]struct{}
}

// NewRegistry 创建权限标识注册表
func NewRegistry() *Registry {
	return &Registry{perms: make(map[string]struct{})}
}

// Add 登记权限标识
func (r *Registry) Add(perms ...string) {
	for _, p := range perms {
		if p != "" {
			r.perms[p] = struct{}{}
		}
	}
}

// Has 权限标识是否已登记
func (r *Registry) Has(perm string) bool {
	_, ok := r.perms[perm]
	return ok
}

// List 全部权限标识，按字典序
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.perms))
	for p := range r.perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
