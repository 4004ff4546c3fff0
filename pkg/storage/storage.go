package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Load when nothing has been persisted under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value medium behind the cart, wishlist and auth snapshots.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores backed by a remote medium.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Key scopes a fixed storage name to one client session: "cart-storage:<session>".
// An empty session yields the bare name.
func Key(name, sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return name
	}
	return name + ":" + sessionID
}
