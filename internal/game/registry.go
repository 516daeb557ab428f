package game

import (
	"fmt"
	"strings"
)

// registry maps stable type identifiers to constructor functions.
type registry[T any] struct {
	kind      string
	factories map[string]func() T
	order     []string
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, factories: make(map[string]func() T)}
}

func (r *registry[T]) register(id string, factory func() T) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%s: empty type identifier", r.kind)
	}
	if factory == nil {
		return fmt.Errorf("%s %q: nil factory", r.kind, id)
	}
	if _, ok := r.factories[id]; ok {
		return fmt.Errorf("%s %q: %w", r.kind, id, ErrDuplicateType)
	}
	r.factories[id] = factory
	r.order = append(r.order, id)
	return nil
}

// lookup calls the factory for id. Unknown identifiers are an error, never a panic.
func (r *registry[T]) lookup(id string) (T, error) {
	factory, ok := r.factories[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.kind, id, ErrUnknownType)
	}
	return factory(), nil
}

func (r *registry[T]) has(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// ids returns identifiers in registration order.
func (r *registry[T]) ids() []string {
	return append([]string(nil), r.order...)
}
