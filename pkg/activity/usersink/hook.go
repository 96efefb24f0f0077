// Package usersink forwards snapshot activity events to a go-users
// ActivitySink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-snapshot/layering"
	"github.com/goliatone/go-snapshot/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// Identifiers that are not UUIDs map to uuid.Nil; the raw values are kept in
// the record data so nothing is lost.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       layering.CloneMap(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	keepRaw := func(key, value string, parsed uuid.UUID) {
		if value == "" || parsed != uuid.Nil {
			return
		}
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data[key] = value
	}
	keepRaw("actor_ref", normalized.ActorID, record.ActorID)
	keepRaw("user_ref", normalized.UserID, record.UserID)
	keepRaw("tenant_ref", normalized.TenantID, record.TenantID)

	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
