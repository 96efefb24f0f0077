package migration

const (
	// Version090 is the legacy export format: nodes keyed by `id`/`type`,
	// edges by `from`/`to`, no contexts collection.
	Version090 = "0.9.0"
	// Version100 is the current schema.
	Version100 = "1.0.0"
	// CurrentVersion is the version hydration targets by default.
	CurrentVersion = Version100
)

// Builtin returns the migrations shipped with the module.
func Builtin() []Migration {
	return []Migration{legacyToV1()}
}

// DefaultRegistry returns a fresh registry holding the builtin migrations.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.RegisterAll(Builtin()...)
	return registry
}

func legacyToV1() Migration {
	return Migration{
		From:        Version090,
		To:          Version100,
		Description: "rename legacy node and edge identifiers, default node types, add contexts",
		Steps: []Step{
			{
				Kind:        StepRename,
				Path:        "scene.nodes.*.id",
				Target:      "guid",
				Description: "rename node id to guid",
				Precondition: Predicate("scene.nodes is a list when present", func(data Data) bool {
					return isListOrAbsent(data, "scene.nodes")
				}),
			},
			RenameField("scene.nodes.*.type", "node_type", "rename node type to node_type"),
			AddField("scene.nodes.*.node_type", "default", "default node_type"),
			{
				Kind:        StepRename,
				Path:        "scene.edges.*.id",
				Target:      "guid",
				Description: "rename edge id to guid",
				Precondition: Predicate("scene.edges is a list when present", func(data Data) bool {
					return isListOrAbsent(data, "scene.edges")
				}),
			},
			RenameField("scene.edges.*.from", "source", "rename edge from to source"),
			RenameField("scene.edges.*.to", "target", "rename edge to to target"),
			RenameField("scene.edges.*.type", "edge_type", "rename edge type to edge_type"),
			{
				Kind:        StepAdd,
				Path:        "scene.contexts",
				Value:       []any{},
				Description: "add contexts collection",
				Postcondition: Predicate("scene.contexts is a list", func(data Data) bool {
					scene, ok := data["scene"].(map[string]any)
					if !ok {
						// nothing to attach to; hydration reports the scene
						return true
					}
					_, isList := scene["contexts"].([]any)
					return isList
				}),
			},
		},
		RollbackSteps: []Step{
			RemoveField("scene.contexts", "drop contexts collection"),
			RenameField("scene.edges.*.edge_type", "type", "restore edge type"),
			RenameField("scene.edges.*.target", "to", "restore edge to"),
			RenameField("scene.edges.*.source", "from", "restore edge from"),
			RenameField("scene.edges.*.guid", "id", "restore edge id"),
			RenameField("scene.nodes.*.node_type", "type", "restore node type"),
			RenameField("scene.nodes.*.guid", "id", "restore node id"),
		},
		Metadata: map[string]any{"builtin": true},
	}
}

func isListOrAbsent(data Data, path string) bool {
	value, ok := Get(data, path)
	if !ok || value == nil {
		return true
	}
	_, isList := value.([]any)
	return isList
}
