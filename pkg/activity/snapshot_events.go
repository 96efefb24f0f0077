package activity

import (
	"strings"
	"time"
)

// Verbs emitted for snapshot lifecycle events.
const (
	VerbSnapshotMigrated        = "snapshot.migrated"
	VerbSnapshotHydrated        = "snapshot.hydrated"
	VerbSnapshotHydrationFailed = "snapshot.hydration_failed"

	// ObjectTypeScene is the object type of every snapshot event.
	ObjectTypeScene = "scene"
)

// SnapshotEventInput describes the fields shared by snapshot events.
type SnapshotEventInput struct {
	ActorID       string
	UserID        string
	TenantID      string
	Channel       string
	SceneGUID     string
	RunID         string
	SourceVersion string
	TargetVersion string
	MigrationPath []string
	Counts        map[string]int
	Warnings      int
	Errors        []string
	Metadata      map[string]any
	OccurredAt    time.Time
}

// BuildSnapshotMigratedEvent reports a snapshot moved between schema versions.
func BuildSnapshotMigratedEvent(input SnapshotEventInput) Event {
	return buildSnapshotEvent(VerbSnapshotMigrated, input)
}

// BuildSnapshotHydratedEvent reports a successful hydration.
func BuildSnapshotHydratedEvent(input SnapshotEventInput) Event {
	return buildSnapshotEvent(VerbSnapshotHydrated, input)
}

// BuildSnapshotHydrationFailedEvent reports a failed hydration. The first
// error, when present, is copied to metadata["error"].
func BuildSnapshotHydrationFailedEvent(input SnapshotEventInput) Event {
	event := buildSnapshotEvent(VerbSnapshotHydrationFailed, input)
	if len(input.Errors) > 0 {
		event.Metadata["error"] = input.Errors[0]
	}
	return event
}

func buildSnapshotEvent(verb string, input SnapshotEventInput) Event {
	metadata := map[string]any{}
	for key, value := range input.Metadata {
		metadata[key] = value
	}
	if input.RunID != "" {
		metadata["run_id"] = input.RunID
	}
	if input.SourceVersion != "" {
		metadata["source_version"] = input.SourceVersion
	}
	if input.TargetVersion != "" {
		metadata["target_version"] = input.TargetVersion
	}
	if len(input.MigrationPath) > 0 {
		metadata["migration_path"] = append([]string{}, input.MigrationPath...)
	}
	if len(input.Counts) > 0 {
		counts := make(map[string]int, len(input.Counts))
		for key, value := range input.Counts {
			counts[key] = value
		}
		metadata["counts"] = counts
	}
	if input.Warnings > 0 {
		metadata["warnings"] = input.Warnings
	}
	if len(input.Errors) > 0 {
		metadata["errors"] = append([]string{}, input.Errors...)
	}

	objectID := strings.TrimSpace(input.SceneGUID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.RunID)
	}
	if objectID == "" {
		objectID = ObjectTypeScene
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeScene,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
