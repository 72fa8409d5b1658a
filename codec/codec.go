// Package codec converts domain events and states to and from the named byte
// payloads the durable repositories store.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrUnregistered = errors.New("type not registered")
	ErrUnknownName  = errors.New("name not registered")
)

// Codec encodes values of T together with the name stored next to the
// payload, and decodes them back.
type Codec[T any] interface {
	Marshal(v T) (name string, data []byte, err error)
	Unmarshal(name string, data []byte) (T, error)
}

// Registry is a JSON Codec for a closed set of concrete types behind the
// interface T, for example every variant of an event sum type. Each concrete
// type is stored under the name it was registered with.
//
// Usage:
//
//	events := codec.NewRegistry[OrderEvent]()
//	codec.Register[OrderEvent, OrderCreated](events, "OrderCreated")
//	codec.Register[OrderEvent, OrderCancelled](events, "OrderCancelled")
type Registry[T any] struct {
	mu     sync.RWMutex
	byName map[string]func(data []byte) (T, error)
	byType map[reflect.Type]string
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		byName: make(map[string]func([]byte) (T, error)),
		byType: make(map[reflect.Type]string),
	}
}

// Register adds the concrete type V to r under name.
//
// Panics:
//   - If name is empty.
//   - If V does not implement T.
//   - If name or V is already registered.
func Register[T, V any](r *Registry[T], name string) {
	if name == "" {
		panic("cannot register type under an empty name")
	}
	typ := reflect.TypeFor[V]()
	if !typ.AssignableTo(reflect.TypeFor[T]()) {
		panic(fmt.Sprintf("%s does not implement %s", typ, reflect.TypeFor[T]()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("name already registered: %s", name))
	}
	if existing, exists := r.byType[typ]; exists {
		panic(fmt.Sprintf("%s already registered as %s", typ, existing))
	}

	r.byType[typ] = name
	r.byName[name] = func(data []byte) (T, error) {
		var v V
		if err := json.Unmarshal(data, &v); err != nil {
			var zero T
			return zero, err
		}
		return any(v).(T), nil
	}
}

func (r *Registry[T]) Marshal(v T) (string, []byte, error) {
	typ := reflect.TypeOf(v)

	r.mu.RLock()
	name, ok := r.byType[typ]
	r.mu.RUnlock()

	if !ok {
		return "", nil, fmt.Errorf("marshal %v: %w", typ, ErrUnregistered)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return name, data, nil
}

func (r *Registry[T]) Unmarshal(name string, data []byte) (T, error) {
	r.mu.RLock()
	decode, ok := r.byName[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("unmarshal %q: %w", name, ErrUnknownName)
	}

	v, err := decode(data)
	if err != nil {
		return v, fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return v, nil
}

// Names returns the registered names.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

type jsonCodec[T any] struct {
	name string
}

// JSON is a Codec for a concrete type T. Every value is stored under name.
func JSON[T any](name string) Codec[T] {
	return jsonCodec[T]{name: name}
}

func (c jsonCodec[T]) Marshal(v T) (string, []byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("marshal %s: %w", c.name, err)
	}
	return c.name, data, nil
}

func (c jsonCodec[T]) Unmarshal(name string, data []byte) (T, error) {
	var v T
	if name != c.name {
		return v, fmt.Errorf("unmarshal %q: %w", name, ErrUnknownName)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s: %w", c.name, err)
	}
	return v, nil
}
