package migration

import (
	"fmt"
	"strings"
)

const wildcard = "*"

// SplitPath breaks a dotted path into segments, dropping empty ones.
func SplitPath(path string) []string {
	raw := strings.Split(strings.TrimSpace(path), ".")
	segments := make([]string, 0, len(raw))
	for _, segment := range raw {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// Walk calls fn with every (parent, key) pair path resolves to. A "*"
// segment fans out over list elements. Missing or non-object intermediate
// values end that branch silently, so a path that matches nothing is not an
// error.
func Walk(data Data, path string, fn func(parent map[string]any, key string) error) error {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return fmt.Errorf("migration: empty path")
	}
	if segments[len(segments)-1] == wildcard {
		return fmt.Errorf("migration: path %q must end with a key", path)
	}
	return walk(data, segments, fn)
}

func walk(node any, segments []string, fn func(map[string]any, string) error) error {
	if len(segments) == 1 {
		parent, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		return fn(parent, segments[0])
	}

	head, rest := segments[0], segments[1:]
	if head == wildcard {
		switch items := node.(type) {
		case []any:
			for _, item := range items {
				if err := walk(item, rest, fn); err != nil {
					return err
				}
			}
		case []map[string]any:
			for _, item := range items {
				if err := walk(item, rest, fn); err != nil {
					return err
				}
			}
		}
		return nil
	}

	parent, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	child, ok := parent[head]
	if !ok {
		return nil
	}
	return walk(child, rest, fn)
}

// Get returns the value at a wildcard-free path.
func Get(data Data, path string) (any, bool) {
	var current any = data
	for _, segment := range SplitPath(path) {
		parent, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = parent[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString returns the string at path or "".
func GetString(data Data, path string) string {
	value, ok := Get(data, path)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Set writes value at a wildcard-free path, creating or replacing
// intermediate objects as needed.
func Set(data Data, path string, value any) error {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return fmt.Errorf("migration: empty path")
	}
	current := data
	for _, segment := range segments[:len(segments)-1] {
		if segment == wildcard {
			return fmt.Errorf("migration: Set does not expand %q in %q", wildcard, path)
		}
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
	return nil
}
