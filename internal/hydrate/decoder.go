package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the snapshot entry being decoded.
type Context struct {
	// Kind is the collection the entry came from, e.g. "node".
	Kind  string
	Index int
	// Scene is the GUID of the owning scene, when known.
	Scene string
}

// Label renders the entry position for error messages, e.g. node[3].
func (c Context) Label() string {
	kind := c.Kind
	if kind == "" {
		kind = "entry"
	}
	return fmt.Sprintf("%s[%d]", kind, c.Index)
}

// PreHook rewrites an entry before it is decoded, e.g. to apply field
// aliases. It receives a private copy of the entry.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook inspects the decoded value. Errors it returns are passed to the
// caller unwrapped so hooks can report domain errors.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder turns one untyped snapshot entry into T.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	useNumber bool
}

// WithPreHook runs hook on the entry copy before decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook runs hook on the decoded value.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithUseNumber keeps numbers as json.Number in the copy handed to pre-hooks.
// Integer identifiers above 2^53 then keep every digit.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.useNumber = true
	}
}

// NewDecoder builds a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T. payload itself is never modified.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, fmt.Errorf("hydrate: %s is not an object", ctx.Label())
	}

	current, err := d.copyOf(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: copy %s: %w", ctx.Label(), err)
	}
	for _, hook := range d.preHooks {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx.Label(), err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal %s: %w", ctx.Label(), err)
	}
	var result T
	if err := json.Unmarshal(buffer, &result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx.Label(), err)
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, err
		}
	}
	return result, nil
}

func (d *Decoder[T]) copyOf(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(buffer))
	if d.useNumber {
		dec.UseNumber()
	}
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
