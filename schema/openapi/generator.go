// Package openapi describes the snapshot wire format as an OpenAPI document:
// the payload accepted by hydration and the HydrationResult it returns.
package openapi

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

const componentPrefix = "#/components/schemas/"

// Generator builds schemas from Go types. Named struct types are emitted
// once as components and referenced everywhere else.
type Generator struct {
	components map[string]map[string]any
	names      map[reflect.Type]string
}

// NewGenerator returns an empty Generator.
func NewGenerator() *Generator {
	return &Generator{
		components: map[string]map[string]any{},
		names:      map[reflect.Type]string{},
	}
}

// Schema returns the schema of t, registering components as needed.
func (g *Generator) Schema(t reflect.Type) map[string]any {
	if t == nil {
		return map[string]any{"type": "null"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case reflect.TypeOf(time.Time{}):
		return map[string]any{"type": "string", "format": "date-time"}
	case reflect.TypeOf(time.Duration(0)):
		return map[string]any{"type": "integer", "format": "int64", "description": "nanoseconds"}
	}

	switch t.Kind() {
	case reflect.Interface:
		return map[string]any{}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Struct:
		if t.Name() == "" {
			return g.structSchema(t)
		}
		return map[string]any{"$ref": componentPrefix + g.component(t)}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return map[string]any{"type": "object"}
		}
		return map[string]any{
			"type":                 "object",
			"additionalProperties": g.Schema(t.Elem()),
		}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "format": "byte"}
		}
		return map[string]any{
			"type":  "array",
			"items": g.Schema(t.Elem()),
		}
	default:
		return map[string]any{
			"type":   "string",
			"format": fmt.Sprintf("go:%s", t.String()),
		}
	}
}

// Components returns the registered component schemas keyed by name.
func (g *Generator) Components() map[string]any {
	out := make(map[string]any, len(g.components))
	for name, schema := range g.components {
		out[name] = schema
	}
	return out
}

// component registers t and returns its component name. The name is
// reserved before the body is built so recursive types terminate.
func (g *Generator) component(t reflect.Type) string {
	if name, ok := g.names[t]; ok {
		return name
	}
	name := g.uniqueName(t)
	g.names[t] = name
	g.components[name] = nil
	g.components[name] = g.structSchema(t)
	return name
}

// uniqueName prefixes the package name when two packages export the same
// type name, e.g. scene.Context and a context type elsewhere.
func (g *Generator) uniqueName(t reflect.Type) string {
	name := t.Name()
	if _, taken := g.components[name]; !taken {
		return name
	}
	pkg := t.PkgPath()
	if idx := strings.LastIndex(pkg, "/"); idx >= 0 {
		pkg = pkg[idx+1:]
	}
	candidate := strings.ToUpper(pkg[:1]) + pkg[1:] + name
	for i := 2; ; i++ {
		if _, taken := g.components[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s%s%d", strings.ToUpper(pkg[:1])+pkg[1:], name, i)
	}
}

func (g *Generator) structSchema(t reflect.Type) map[string]any {
	properties := map[string]any{}
	var required []string
	g.collectFields(t, properties, &required)

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sort.Strings(required)
		schema["required"] = required
	}
	return schema
}

func (g *Generator) collectFields(t reflect.Type, properties map[string]any, required *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() && !field.Anonymous {
			continue
		}

		name, omitempty, skip := jsonName(field)
		if skip {
			continue
		}
		if field.Anonymous && name == "" {
			embedded := field.Type
			for embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				g.collectFields(embedded, properties, required)
				continue
			}
		}
		if name == "" {
			name = field.Name
		}

		properties[name] = g.Schema(field.Type)
		if !omitempty && field.Type.Kind() != reflect.Pointer {
			*required = append(*required, name)
		}
	}
}

func jsonName(field reflect.StructField) (name string, omitempty, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, true
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitempty = true
		}
	}
	return parts[0], omitempty, false
}
