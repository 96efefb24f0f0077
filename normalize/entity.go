package normalize

import "github.com/goliatone/go-snapshot/scene"

// Scene builds the scene shell. Collections are attached by the caller once
// they are hydrated. A missing slug is derived from the name.
func Scene(raw RawScene) scene.Scene {
	name := text(raw.Name, DefaultSceneName)
	return scene.Scene{
		GUID:        Text(raw.GUID),
		Name:        name,
		Slug:        text(raw.Slug, slug(name)),
		Description: Text(raw.Description),
		SceneType:   text(raw.SceneType, DefaultSceneType),
		Config:      SceneConfig(raw.Config),
		Meta:        SceneMeta(raw.Meta),
		Style:       SceneStyle(raw.Style),
	}
}

// Node builds a node owned by sceneGUID. Required fields are not checked.
func Node(raw RawNode, sceneGUID string) scene.Node {
	return scene.Node{
		GUID:       Text(raw.GUID),
		SceneGUID:  sceneGUID,
		NodeType:   Text(raw.NodeType),
		Position:   Position(raw.Position),
		Dimensions: Dimensions(raw.Dimensions),
		Metadata:   NodeMetadata(raw.Metadata),
		Style:      NodeStyle(raw.Style),
		Transform:  Transform(raw.Transform),
	}
}

// Edge builds an edge owned by sceneGUID. Endpoints are copied as given and
// the edge type falls back to DefaultEdgeType.
func Edge(raw RawEdge, sceneGUID string) scene.Edge {
	return scene.Edge{
		GUID:       Text(raw.GUID),
		SceneGUID:  sceneGUID,
		SourceGUID: Text(raw.Source),
		TargetGUID: Text(raw.Target),
		EdgeType:   text(raw.EdgeType, DefaultEdgeType),
		Path:       EdgePath(raw.Path),
		Metadata:   EdgeMetadata(raw.Metadata),
		Style:      EdgeStyle(raw.Style),
		Transform:  Transform(raw.Transform),
	}
}

// Context builds a context owned by sceneGUID. A nameless context is named
// after its GUID.
func Context(raw RawContext, sceneGUID string) scene.Context {
	guid := Text(raw.GUID)
	return scene.Context{
		GUID:        guid,
		SceneGUID:   sceneGUID,
		Name:        text(raw.Name, guid),
		ContextType: text(raw.ContextType, DefaultContextType),
		TargetGUID:  Text(raw.TargetGUID),
		Coordinates: Position(raw.Coordinates),
		Metadata:    ContextMetadata(raw.Metadata),
	}
}
