// Package persist keeps local and remote storage consistent with the
// state store. Local writes are synchronous within each change effect;
// remote writes are best-effort, fire-and-forget mirrors. Failures are
// swallowed by design, but counted so they stay visible.
package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/techcolloid1243/finance-planner/internal/auth"
	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/docstore"
	"github.com/techcolloid1243/finance-planner/internal/state"
	"github.com/techcolloid1243/finance-planner/internal/storage"
)

// RemotePublisher is the optional queued path for remote mirroring:
// instead of merging directly, the adapter publishes a sync message and
// a worker performs the merge from the latest local document.
type RemotePublisher interface {
	PublishStateSync(ctx context.Context, userID string, version int64) error
}

// Adapter wires the state store, the local store, the remote docstore
// and the auth provider together.
type Adapter struct {
	store     *state.Store
	local     *storage.LocalStore
	remote    docstore.Client
	auth      auth.Provider
	publisher RemotePublisher // nil: merge remotely in-process

	mu       sync.Mutex
	identity *auth.Identity

	unsubAuth  func()
	unsubStore func()
	wg         sync.WaitGroup

	metrics metrics
}

// New creates an adapter. publisher may be nil.
func New(store *state.Store, local *storage.LocalStore, remote docstore.Client, authp auth.Provider, publisher RemotePublisher) *Adapter {
	return &Adapter{
		store:     store,
		local:     local,
		remote:    remote,
		auth:      authp,
		publisher: publisher,
	}
}

// Run subscribes to state changes and to the auth stream. The auth
// subscription delivers the current value synchronously, so initial
// hydration has completed by the time Run returns. At most one
// subscription per collaborator is held; Close releases both.
func (a *Adapter) Run(ctx context.Context) {
	a.unsubStore = a.store.Subscribe(func(s core.FinanceState, rev uint64) {
		a.persistEffect(ctx, s)
	})
	a.unsubAuth = a.auth.Subscribe(func(id *auth.Identity) {
		a.hydrate(ctx, id)
	})
}

// Close unsubscribes from both collaborators and waits for in-flight
// remote writes.
func (a *Adapter) Close() {
	if a.unsubAuth != nil {
		a.unsubAuth()
		a.unsubAuth = nil
	}
	if a.unsubStore != nil {
		a.unsubStore()
		a.unsubStore = nil
	}
	a.wg.Wait()
}

func (a *Adapter) currentIdentity() *auth.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// hydrate establishes the state for an authentication transition.
//
// Signed in: adopt the remote document when it exists; otherwise adopt
// local storage and create the remote document from it (the one-time
// migration — once the document exists this branch never runs again).
// When the remote read itself fails, fall back to local WITHOUT
// migrating: creating a document over one we could not read might
// clobber it.
//
// Signed out: adopt local storage, or the empty default.
func (a *Adapter) hydrate(ctx context.Context, id *auth.Identity) {
	a.mu.Lock()
	a.identity = id
	a.mu.Unlock()

	defer a.metrics.hydrations.Add(1)

	if id == nil {
		a.adoptLocalOrDefault(ctx)
		slog.InfoContext(ctx, "Hydrated anonymous state")
		return
	}

	remoteState, exists, err := a.remote.Get(ctx, id.UserID)
	if err != nil {
		a.metrics.remoteReadFailures.Add(1)
		slog.ErrorContext(ctx, "Remote document read failed, falling back to local state",
			"user_id", id.UserID, "error", err)
		a.adoptLocalOrDefault(ctx)
		return
	}

	if exists {
		a.store.Replace(remoteState)
		slog.InfoContext(ctx, "Hydrated from remote document", "user_id", id.UserID)
		return
	}

	localState, found, err := a.local.LoadState(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Local state read failed during hydration", "error", err)
	}
	if !found {
		a.store.Replace(core.DefaultState())
		slog.InfoContext(ctx, "Hydrated empty state for first sign-in", "user_id", id.UserID)
		return
	}

	a.store.Replace(localState)
	if err := a.remote.Set(ctx, id.UserID, localState); err != nil {
		a.metrics.remoteWriteFailures.Add(1)
		slog.ErrorContext(ctx, "One-time migration to remote document failed",
			"user_id", id.UserID, "error", err)
		return
	}
	a.metrics.migrations.Add(1)
	slog.InfoContext(ctx, "Migrated local state to remote document", "user_id", id.UserID)
}

func (a *Adapter) adoptLocalOrDefault(ctx context.Context) {
	localState, found, err := a.local.LoadState(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Local state read failed, using default state", "error", err)
	}
	if found {
		a.store.Replace(localState)
		return
	}
	a.store.Replace(core.DefaultState())
}

// persistEffect runs on every state version: local write first,
// synchronously; then, if signed in, a fire-and-forget remote mirror.
// Nothing here ever surfaces an error to the mutation's caller.
func (a *Adapter) persistEffect(ctx context.Context, s core.FinanceState) {
	version, err := a.local.SaveState(ctx, s)
	if err != nil {
		a.metrics.localWriteFailures.Add(1)
		slog.ErrorContext(ctx, "Local state write failed", "error", err)
	} else {
		a.metrics.localWrites.Add(1)
	}

	id := a.currentIdentity()
	if id == nil {
		return
	}

	if a.publisher != nil {
		if err != nil {
			// The worker mirrors from the local document; without a local
			// write there is nothing newer to sync.
			return
		}
		if perr := a.publisher.PublishStateSync(ctx, id.UserID, version); perr != nil {
			a.metrics.remoteWriteFailures.Add(1)
			slog.ErrorContext(ctx, "Sync message publish failed", "user_id", id.UserID, "error", perr)
		} else {
			a.metrics.remoteWrites.Add(1)
		}
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if merr := a.remote.Merge(ctx, id.UserID, s); merr != nil {
			a.metrics.remoteWriteFailures.Add(1)
			slog.ErrorContext(ctx, "Remote state merge failed", "user_id", id.UserID, "error", merr)
			return
		}
		a.metrics.remoteWrites.Add(1)
		if version > 0 {
			if serr := a.local.MarkSynced(ctx, version); serr != nil {
				slog.WarnContext(ctx, "Recording synced version failed", "version", version, "error", serr)
			}
		}
	}()
}

// Flush waits for in-flight remote writes without unsubscribing; the
// tests use it to observe fire-and-forget completions.
func (a *Adapter) Flush() {
	a.wg.Wait()
}
