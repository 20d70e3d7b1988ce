// Package syncx provides extended synchronization primitives
package syncx

import "sync"

// RWGuard wraps RWMutex around a value with scoped lock helpers.
// The assistant uses it for settings that change at runtime, such as
// the model configuration and the system prompt.
type RWGuard[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewGuard creates a guarded value.
func NewGuard[T any](initial T) *RWGuard[T] {
	return &RWGuard[T]{value: initial}
}

// Get returns a copy of the value (T should be value type or immutable).
func (g *RWGuard[T]) Get() T {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Set atomically replaces the value.
func (g *RWGuard[T]) Set(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = v
}

// Write executes fn while holding the write lock, fn receives a pointer for mutation.
func (g *RWGuard[T]) Write(fn func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.value)
}

// Update executes fn while holding the write lock, returning a result.
func (g *RWGuard[T]) Update(fn func(*T) any) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&g.value)
}
