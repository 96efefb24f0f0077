package migration

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores migrations keyed by "{from}->{to}". It is owned by the host
// application; there is no package-level instance.
type Registry struct {
	mu         sync.RWMutex
	migrations map[string]Migration
	order      []string
	generation uint64
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		migrations: make(map[string]Migration),
	}
}

// Register inserts m, replacing any migration registered for the same pair.
// A replaced entry keeps its original position in iteration order.
func (r *Registry) Register(m Migration) error {
	if m.From == "" || m.To == "" {
		return fmt.Errorf("%w: got %q -> %q", ErrEmptyVersion, m.From, m.To)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.migrations == nil {
		r.migrations = make(map[string]Migration)
	}
	key := m.Key()
	if _, exists := r.migrations[key]; !exists {
		r.order = append(r.order, key)
	}
	r.migrations[key] = m
	r.generation++
	return nil
}

// Generation counts successful registrations. Callers caching migration
// output can use it to notice that the registry changed.
func (r *Registry) Generation() uint64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// RegisterAll registers every migration, stopping at the first error.
func (r *Registry) RegisterAll(migrations ...Migration) error {
	for _, m := range migrations {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the migration registered for the pair.
func (r *Registry) Get(from, to string) (Migration, bool) {
	if r == nil {
		return Migration{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.migrations[Key(from, to)]
	return m, ok
}

// Migrations returns every migration in registration order.
func (r *Registry) Migrations() []Migration {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Migration, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.migrations[key])
	}
	return out
}

// Versions returns every version that appears as an endpoint, sorted.
func (r *Registry) Versions() []string {
	seen := map[string]struct{}{}
	for _, m := range r.Migrations() {
		seen[m.From] = struct{}{}
		seen[m.To] = struct{}{}
	}
	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// FindPath returns the shortest chain of migrations from -> to, counting one
// hop per migration. Ties resolve to the first path discovered when
// neighbours are visited in registration order. The result is empty when to
// is unreachable or equals from.
func (r *Registry) FindPath(from, to string) []Migration {
	if r == nil || from == to {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	visited := map[string]bool{from: true}
	via := map[string]string{}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, key := range r.order {
			m := r.migrations[key]
			if m.From != current || visited[m.To] {
				continue
			}
			visited[m.To] = true
			via[m.To] = key
			if m.To == to {
				return r.unwind(from, to, via)
			}
			queue = append(queue, m.To)
		}
	}
	return nil
}

func (r *Registry) unwind(from, to string, via map[string]string) []Migration {
	var path []Migration
	for version := to; version != from; {
		m := r.migrations[via[version]]
		path = append(path, m)
		version = m.From
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// HasMigration reports whether any path connects from -> to.
func (r *Registry) HasMigration(from, to string) bool {
	return len(r.FindPath(from, to)) > 0
}

// PathKeys renders a path as its migration keys.
func PathKeys(path []Migration) []string {
	keys := make([]string, 0, len(path))
	for _, m := range path {
		keys = append(keys, m.Key())
	}
	return keys
}
