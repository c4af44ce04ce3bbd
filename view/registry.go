package view

import "sync"

// Registry 按用户保存页面状态；同一用户的操作串行执行
type Registry struct {
	mu      sync.Mutex
	entries map[uint]*entry
}

type entry struct {
	mu    sync.Mutex
	state State
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint]*entry)}
}

// Acquire 锁定并返回用户的状态，调用方用完必须调用 release
func (r *Registry) Acquire(userID uint) (state *State, release func()) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	if !ok {
		e = &entry{}
		r.entries[userID] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	return &e.state, e.mu.Unlock
}

// Forget 丢弃用户的状态，下次访问重新加载
func (r *Registry) Forget(userID uint) {
	r.mu.Lock()
	delete(r.entries, userID)
	r.mu.Unlock()
}
