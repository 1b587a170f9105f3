// Package docstore defines the remote document store collaborator: one
// JSON document per authenticated identity, with point read, point
// write (replace) and point write (shallow merge). No schema is
// enforced remotely; readers defensively normalize what they get back.
package docstore

import (
	"context"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

// Client is the outbound port to the remote store.
type Client interface {
	// Get reads the user's document. The second return is false when no
	// document exists for that user.
	Get(ctx context.Context, userID string) (core.FinanceState, bool, error)

	// Set replaces (or creates) the user's document with the full
	// aggregate. Used for the one-time local-to-remote migration.
	Set(ctx context.Context, userID string, s core.FinanceState) error

	// Merge overlays the aggregate's top-level fields onto the user's
	// document. Array-valued fields are whole-field replacements under
	// this shallow merge; concurrent writers are last-completed-wins per
	// field.
	Merge(ctx context.Context, userID string, s core.FinanceState) error
}
