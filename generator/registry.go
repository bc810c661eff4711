package generator

import (
	"sync"

	"github.com/ByLCY/duizhao/errs"
)

// Handle 标识登记在 Registry 中的 FontContext。零值不是有效句柄。
type Handle uint64

// Registry 按句柄保存 FontContext，供外部调用方跨调用复用字体。
// Release 把上下文移出登记表，之后再使用该句柄会得到配置错误。
type Registry struct {
	mu       sync.Mutex
	next     Handle
	contexts map[Handle]FontContext
}

// NewRegistry 创建空的登记表。
func NewRegistry() *Registry {
	return &Registry{contexts: map[Handle]FontContext{}}
}

// Open 登记 fc 并返回新句柄。
func (r *Registry) Open(fc FontContext) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.contexts[r.next] = fc.Clone()
	return r.next
}

// Get 返回句柄对应上下文的副本。
func (r *Registry) Get(h Handle) (FontContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fc, ok := r.contexts[h]
	if !ok {
		return FontContext{}, errs.Configf("registry", "无效或已释放的句柄 %d", h)
	}
	return fc.Clone(), nil
}

// Release 移出并返回句柄对应的上下文。重复释放返回配置错误。
func (r *Registry) Release(h Handle) (FontContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fc, ok := r.contexts[h]
	if !ok {
		return FontContext{}, errs.Configf("registry", "无效或已释放的句柄 %d", h)
	}
	delete(r.contexts, h)
	return fc, nil
}

// Len 返回仍在登记中的上下文数。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}
