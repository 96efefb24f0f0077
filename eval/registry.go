package eval

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable exposed to migration expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by lowercased name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("eval: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("eval: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("eval: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("eval: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("eval: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinFunctions returns a registry preloaded with helpers migration
// expressions commonly need: coalesce, slug and lower.
func BuiltinFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("coalesce", func(args ...any) (any, error) {
		for _, arg := range args {
			if arg == nil {
				continue
			}
			if s, ok := arg.(string); ok && s == "" {
				continue
			}
			return arg, nil
		}
		return nil, nil
	})
	_ = registry.Register("slug", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("eval: slug expects 1 argument, got %d", len(args))
		}
		return Slug(fmt.Sprint(args[0])), nil
	})
	_ = registry.Register("lower", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("eval: lower expects 1 argument, got %d", len(args))
		}
		return strings.ToLower(fmt.Sprint(args[0])), nil
	})
	return registry
}

// Slug lowercases value and collapses every run of non-alphanumerics into a
// single dash.
func Slug(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
