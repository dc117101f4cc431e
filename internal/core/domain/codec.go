package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// discriminatorField names the JSON field carrying the variant kind. Variants
// must not define a field with the same name.
const discriminatorField = "type"

type registry[T any] struct {
	name     string
	mu       sync.RWMutex
	decoders map[string]func([]byte) (T, error)
}

func newRegistry[T any](name string) *registry[T] {
	return &registry[T]{name: name, decoders: make(map[string]func([]byte) (T, error))}
}

func (r *registry[T]) register(kind string, decode func([]byte) (T, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoders[kind]; exists {
		panic(fmt.Sprintf("%s kind %q registered twice", r.name, kind))
	}
	r.decoders[kind] = decode
}

func (r *registry[T]) kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.decoders))
	for k := range r.decoders {
		out = append(out, k)
	}
	return out
}

func (r *registry[T]) decode(data []byte) (T, error) {
	var zero T
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return zero, fmt.Errorf("%s payload: %v: %w", r.name, err, ErrValidation)
	}
	if head.Type == nil {
		return zero, fmt.Errorf("%s payload without %q: %w", r.name, discriminatorField, ErrUnknownVariant)
	}

	r.mu.RLock()
	decode, ok := r.decoders[*head.Type]
	r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("%s kind %q: %w", r.name, *head.Type, ErrUnknownVariant)
	}
	return decode(data)
}

// decodeAs unmarshals data into a V value and returns it as T.
func decodeAs[T any, V any](data []byte) (T, error) {
	var zero T
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("%T: %w", v, wrapDecodeErr(err))
	}
	out, ok := any(v).(T)
	if !ok {
		return zero, fmt.Errorf("%T does not implement the registered interface: %w", v, ErrUnknownVariant)
	}
	return out, nil
}

// wrapDecodeErr keeps domain kinds raised by nested decoders and classifies
// everything else as a validation failure.
func wrapDecodeErr(err error) error {
	for _, kind := range []error{ErrUnknownVariant, ErrValidation} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%v: %w", err, ErrValidation)
}

// encodeTagged marshals v as a JSON object and adds the discriminator. Keys
// come out sorted, which keeps the encoding canonical for hashing.
func encodeTagged(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%s must encode as a JSON object: %w", kind, err)
	}
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	fields[discriminatorField] = tag
	return json.Marshal(fields)
}
