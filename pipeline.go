package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-snapshot/internal/hydrate"
	"github.com/goliatone/go-snapshot/layering"
	"github.com/goliatone/go-snapshot/normalize"
	"github.com/goliatone/go-snapshot/scene"
)

var sceneCollections = []string{"nodes", "edges", "contexts"}

type decoders struct {
	scene   *hydrate.Decoder[normalize.RawScene]
	node    *hydrate.Decoder[normalize.RawNode]
	edge    *hydrate.Decoder[normalize.RawEdge]
	context *hydrate.Decoder[normalize.RawContext]
}

func newDecoders() decoders {
	return decoders{
		scene: hydrate.NewDecoder[normalize.RawScene](
			hydrate.WithUseNumber[normalize.RawScene](),
			hydrate.WithPreHook[normalize.RawScene](aliasHook(normalize.SceneAliases, "guid")),
		),
		node: hydrate.NewDecoder[normalize.RawNode](
			hydrate.WithUseNumber[normalize.RawNode](),
			hydrate.WithPreHook[normalize.RawNode](aliasHook(normalize.NodeAliases, "guid")),
			hydrate.WithPostHook[normalize.RawNode](requireNode),
		),
		edge: hydrate.NewDecoder[normalize.RawEdge](
			hydrate.WithUseNumber[normalize.RawEdge](),
			hydrate.WithPreHook[normalize.RawEdge](aliasHook(normalize.EdgeAliases, "guid", "source", "target")),
			hydrate.WithPostHook[normalize.RawEdge](requireEdge),
		),
		context: hydrate.NewDecoder[normalize.RawContext](
			hydrate.WithUseNumber[normalize.RawContext](),
			hydrate.WithPreHook[normalize.RawContext](aliasHook(normalize.ContextAliases, "guid", "target_guid")),
			hydrate.WithPostHook[normalize.RawContext](requireContext),
		),
	}
}

// requireNode rejects nodes without an identity or a type.
func requireNode(ctx hydrate.Context, raw *normalize.RawNode) error {
	guid := normalize.Text(raw.GUID)
	if guid == "" {
		return &EntityError{Kind: KindNode, Index: ctx.Index, Err: ErrMissingGUID}
	}
	if normalize.Text(raw.NodeType) == "" {
		return &EntityError{Kind: KindNode, Index: ctx.Index, GUID: guid, Err: fmt.Errorf("%w: node_type", ErrMissingType)}
	}
	return nil
}

// requireEdge rejects edges without an identity or either endpoint.
func requireEdge(ctx hydrate.Context, raw *normalize.RawEdge) error {
	guid := normalize.Text(raw.GUID)
	if guid == "" {
		return &EntityError{Kind: KindEdge, Index: ctx.Index, Err: ErrMissingGUID}
	}
	if normalize.Text(raw.Source) == "" || normalize.Text(raw.Target) == "" {
		return &EntityError{Kind: KindEdge, Index: ctx.Index, GUID: guid, Err: ErrMissingEndpoint}
	}
	return nil
}

func requireContext(ctx hydrate.Context, raw *normalize.RawContext) error {
	if normalize.Text(raw.GUID) == "" {
		return &EntityError{Kind: KindContext, Index: ctx.Index, Err: ErrMissingGUID}
	}
	return nil
}

func aliasHook(aliases []normalize.Alias, idKeys ...string) hydrate.PreHook {
	return func(_ hydrate.Context, entry map[string]any) (map[string]any, error) {
		entry = normalize.ApplyAliases(entry, aliases)
		return normalize.StringifyIdentifiers(entry, idKeys...), nil
	}
}

// run is the state of one pass through the stages.
type run struct {
	h       *Hydrator
	b       *resultBuilder
	opts    HydrationOptions
	version string

	data     map[string]any
	sceneMap map[string]any
	shell    scene.Scene
	nodes    []scene.Node
	edges    []scene.Edge
	contexts []scene.Context
}

// pipeline runs the five stages in order. Each stage commits its entities to
// the result only when it completes.
func (r *run) pipeline(ctx context.Context, data map[string]any) error {
	r.data = data
	if err := r.stage(ctx, StageScene, r.sceneStage); err != nil {
		r.b.clearEntities()
		return err
	}
	if err := r.stage(ctx, StageNodes, r.nodeStage); err != nil {
		return err
	}
	if err := r.stage(ctx, StageEdges, r.edgeStage); err != nil {
		return err
	}
	if err := r.stage(ctx, StageContexts, r.contextStage); err != nil {
		return err
	}
	return r.stage(ctx, StageValidate, r.validateStage)
}

func (r *run) stage(ctx context.Context, stage Stage, fn func(context.Context) (int, error)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("snapshot: %s stage: %w", stage, err)
	}
	ctx, span := r.h.tracer.Start(ctx, spanStage+string(stage))
	skippedBefore := r.b.result.Metadata.Counts.Skipped
	start := r.h.now()

	count, err := fn(ctx)

	duration := r.h.now().Sub(start)
	skipped := r.b.result.Metadata.Counts.Skipped - skippedBefore
	r.b.stage(stage, duration)
	r.h.log(LogEvent{
		RunID:    r.b.result.Metadata.RunID,
		Stage:    stage,
		Duration: duration,
		Count:    count,
		Skipped:  skipped,
		Err:      err,
	})
	endSpan(span, err, entityAttrs(count, skipped)...)
	return err
}

func (r *run) sceneStage(context.Context) (int, error) {
	raw, ok := r.sceneMapFrom()
	if !ok {
		return 0, &SceneStageError{Err: fmt.Errorf("scene must be an object, got %s", describe(r.data["scene"]))}
	}
	r.sceneMap = raw

	shellInput := make(map[string]any, len(raw))
	for key, value := range raw {
		if !isCollection(key) {
			shellInput[key] = value
		}
	}
	decoded, err := r.h.decoders.scene.Decode(hydrate.Context{Kind: "scene"}, r.finite("scene", shellInput))
	if err != nil {
		return 0, &SceneStageError{Err: err}
	}

	r.shell = normalize.Scene(decoded)
	if r.shell.Meta.Version == "" {
		r.shell.Meta.Version = r.version
	}
	r.b.setScene(r.shell)
	return 1, nil
}

func (r *run) sceneMapFrom() (map[string]any, bool) {
	raw, ok := r.data["scene"].(map[string]any)
	if !ok {
		return nil, false
	}
	if len(r.h.sceneDefaults) == 0 {
		return raw, true
	}
	return layering.MergeLayers(raw, r.h.sceneDefaults), true
}

func (r *run) nodeStage(ctx context.Context) (int, error) {
	entries, err := r.entries(KindNode, "nodes")
	if err != nil {
		return 0, err
	}
	nodes := make([]scene.Node, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("snapshot: nodes stage: %w", err)
		}
		node, err := r.buildNode(i, entry, seen)
		if err != nil {
			if r.opts.Strict {
				return 0, err
			}
			r.b.skip(err)
			continue
		}
		seen[node.GUID] = i
		nodes = append(nodes, node)
	}
	r.nodes = nodes
	r.b.setNodes(nodes)
	return len(nodes), nil
}

func (r *run) buildNode(index int, entry any, seen map[string]int) (scene.Node, error) {
	raw, err := decodeEntry(r, r.h.decoders.node, KindNode, index, entry)
	if err != nil {
		return scene.Node{}, err
	}
	node := normalize.Node(raw, r.shell.GUID)
	if first, dup := seen[node.GUID]; dup {
		return scene.Node{}, &EntityError{Kind: KindNode, Index: index, GUID: node.GUID, Err: fmt.Errorf("%w: first used by node[%d]", ErrDuplicateGUID, first)}
	}
	return node, nil
}

func (r *run) edgeStage(ctx context.Context) (int, error) {
	entries, err := r.entries(KindEdge, "edges")
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(r.nodes))
	for _, node := range r.nodes {
		known[node.GUID] = struct{}{}
	}
	edges := make([]scene.Edge, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("snapshot: edges stage: %w", err)
		}
		edge, err := r.buildEdge(i, entry, known, seen)
		if err != nil {
			if r.opts.Strict {
				return 0, err
			}
			r.b.skip(err)
			continue
		}
		seen[edge.GUID] = i
		edges = append(edges, edge)
	}
	r.edges = edges
	r.b.setEdges(edges)
	return len(edges), nil
}

func (r *run) buildEdge(index int, entry any, known map[string]struct{}, seen map[string]int) (scene.Edge, error) {
	raw, err := decodeEntry(r, r.h.decoders.edge, KindEdge, index, entry)
	if err != nil {
		return scene.Edge{}, err
	}
	edge := normalize.Edge(raw, r.shell.GUID)
	fail := func(err error) (scene.Edge, error) {
		return scene.Edge{}, &EntityError{Kind: KindEdge, Index: index, GUID: edge.GUID, Err: err}
	}
	if _, ok := known[edge.SourceGUID]; !ok {
		return fail(fmt.Errorf("%w: source %q", ErrUnresolvedEndpoint, edge.SourceGUID))
	}
	if _, ok := known[edge.TargetGUID]; !ok {
		return fail(fmt.Errorf("%w: target %q", ErrUnresolvedEndpoint, edge.TargetGUID))
	}
	if first, dup := seen[edge.GUID]; dup {
		return fail(fmt.Errorf("%w: first used by edge[%d]", ErrDuplicateGUID, first))
	}
	return edge, nil
}

func (r *run) contextStage(ctx context.Context) (int, error) {
	entries, err := r.entries(KindContext, "contexts")
	if err != nil {
		return 0, err
	}
	contexts := make([]scene.Context, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("snapshot: contexts stage: %w", err)
		}
		c, err := r.buildContext(i, entry, seen)
		if err != nil {
			if r.opts.Strict {
				return 0, err
			}
			r.b.skip(err)
			continue
		}
		seen[c.GUID] = i
		contexts = append(contexts, c)
	}
	r.contexts = contexts
	r.b.setContexts(contexts)
	return len(contexts), nil
}

func (r *run) buildContext(index int, entry any, seen map[string]int) (scene.Context, error) {
	raw, err := decodeEntry(r, r.h.decoders.context, KindContext, index, entry)
	if err != nil {
		return scene.Context{}, err
	}
	c := normalize.Context(raw, r.shell.GUID)
	if first, dup := seen[c.GUID]; dup {
		return scene.Context{}, &EntityError{Kind: KindContext, Index: index, GUID: c.GUID, Err: fmt.Errorf("%w: first used by context[%d]", ErrDuplicateGUID, first)}
	}
	return c, nil
}

func (r *run) validateStage(context.Context) (int, error) {
	if r.opts.Validate {
		if violations := validateEntities(r.nodes, r.edges, r.contexts); len(violations) > 0 {
			return 0, &ValidationError{Violations: violations}
		}
	}
	r.b.link()
	return len(r.nodes) + len(r.edges) + len(r.contexts), nil
}

// entries returns the raw collection. A malformed collection is fatal in
// strict mode and otherwise recorded and treated as empty.
func (r *run) entries(kind EntityKind, key string) ([]any, error) {
	entries, err := collection(r.sceneMap, key)
	if err == nil {
		return entries, nil
	}
	entityErr := &EntityError{Kind: kind, Index: -1, Err: err}
	if r.opts.Strict {
		return nil, entityErr
	}
	r.b.skip(entityErr)
	return nil, nil
}

func validateEntities(nodes []scene.Node, edges []scene.Edge, contexts []scene.Context) []Violation {
	var violations []Violation
	owners := make(map[string]EntityKind, len(nodes)+len(edges)+len(contexts))
	claim := func(kind EntityKind, guid string) {
		if guid == "" {
			violations = append(violations, Violation{Kind: kind, Field: "guid", Message: "is required"})
			return
		}
		if owner, taken := owners[guid]; taken {
			violations = append(violations, Violation{Kind: kind, GUID: guid, Field: "guid", Message: fmt.Sprintf("already used by a %s", owner)})
			return
		}
		owners[guid] = kind
	}
	require := func(kind EntityKind, guid, field, value string) {
		if value == "" {
			violations = append(violations, Violation{Kind: kind, GUID: guid, Field: field, Message: "is required"})
		}
	}

	nodeSet := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		claim(KindNode, node.GUID)
		require(KindNode, node.GUID, "node_type", node.NodeType)
		nodeSet[node.GUID] = struct{}{}
	}
	for _, edge := range edges {
		claim(KindEdge, edge.GUID)
		require(KindEdge, edge.GUID, "edge_type", edge.EdgeType)
		if _, ok := nodeSet[edge.SourceGUID]; !ok {
			violations = append(violations, Violation{Kind: KindEdge, GUID: edge.GUID, Field: "source", Message: fmt.Sprintf("references unknown node %q", edge.SourceGUID)})
		}
		if _, ok := nodeSet[edge.TargetGUID]; !ok {
			violations = append(violations, Violation{Kind: KindEdge, GUID: edge.GUID, Field: "target", Message: fmt.Sprintf("references unknown node %q", edge.TargetGUID)})
		}
	}
	for _, c := range contexts {
		claim(KindContext, c.GUID)
		require(KindContext, c.GUID, "context_type", c.ContextType)
	}
	return violations
}

func decodeEntry[T any](r *run, decoder *hydrate.Decoder[T], kind EntityKind, index int, entry any) (T, error) {
	var zero T
	obj, ok := entry.(map[string]any)
	if !ok {
		return zero, &EntityError{Kind: kind, Index: index, Err: fmt.Errorf("%w: got %s", ErrNotObject, describe(entry))}
	}
	ctx := hydrate.Context{Kind: string(kind), Index: index, Scene: r.shell.GUID}
	obj = r.finite(ctx.Label(), obj)
	raw, err := decoder.Decode(ctx, obj)
	if err != nil {
		var entityErr *EntityError
		if errors.As(err, &entityErr) {
			return zero, entityErr
		}
		return zero, &EntityError{Kind: kind, Index: index, GUID: entryGUID(obj), Err: err}
	}
	return raw, nil
}

// finite replaces NaN and infinite numbers in entry with null so the fields
// holding them take their defaults.
func (r *run) finite(label string, entry map[string]any) map[string]any {
	cleaned, replaced := normalize.DropNonFinite(entry)
	if replaced > 0 {
		r.b.warn("snapshot: %s: replaced %d non-finite number(s) with defaults", label, replaced)
	}
	return cleaned
}

func collection(owner map[string]any, key string) ([]any, error) {
	value, ok := owner[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch items := value.(type) {
	case []any:
		return items, nil
	case []map[string]any:
		out := make([]any, len(items))
		for i := range items {
			out[i] = items[i]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: scene.%s is %s", ErrNotArray, key, describe(value))
	}
}

func isCollection(key string) bool {
	for _, name := range sceneCollections {
		if key == name {
			return true
		}
	}
	return false
}

func entryGUID(entry map[string]any) string {
	for _, key := range []string{"guid", "id"} {
		if s, ok := entry[key].(string); ok {
			return s
		}
	}
	return ""
}

func describe(value any) string {
	if value == nil {
		return "null"
	}
	switch value.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64, int, int64, float32:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
