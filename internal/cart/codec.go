package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion tags every persisted cart payload.
const SchemaVersion = 1

// ErrUnsupportedVersion is returned by Decode for payloads written by an unknown schema.
var ErrUnsupportedVersion = errors.New("unsupported cart schema version")

type envelope struct {
	Version   int        `json:"version"`
	Items     []LineItem `json:"items"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// Encode serializes a snapshot into the versioned persisted form.
func Encode(snap Snapshot) ([]byte, error) {
	items := snap.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(envelope{
		Version:   SchemaVersion,
		Items:     items,
		Total:     snap.Total,
		ItemCount: snap.ItemCount,
	})
}

// Decode restores a snapshot. Stored aggregates are ignored and recomputed from the items.
func Decode(payload []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Snapshot{}, fmt.Errorf("decode cart payload: %w", err)
	}
	if env.Version != SchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return Summarize(normalize(env.Items)), nil
}
