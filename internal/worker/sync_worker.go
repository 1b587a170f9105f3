// Package worker mirrors the local state document to the remote store
// when sync runs through the AMQP queue instead of in-process.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/techcolloid1243/finance-planner/internal/amqp"
	"github.com/techcolloid1243/finance-planner/internal/docstore"
	"github.com/techcolloid1243/finance-planner/internal/storage"
)

// SyncWorker applies state sync messages: it loads the latest local
// document and merges it into the user's remote document. Because the
// message only names a version, stale messages collapse into whichever
// merge carries the newest local state.
type SyncWorker struct {
	local  *storage.LocalStore
	remote docstore.Client
}

func NewSyncWorker(local *storage.LocalStore, remote docstore.Client) *SyncWorker {
	return &SyncWorker{local: local, remote: remote}
}

// HandleSyncMessage processes one sync message from the queue.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.StateSyncMessage) error {
	synced, err := w.local.SyncedVersion(ctx)
	if err != nil {
		return fmt.Errorf("read synced version: %w", err)
	}
	if synced >= msg.Version {
		slog.DebugContext(ctx, "Sync message already covered",
			"user_id", msg.UserID,
			"message_version", msg.Version,
			"synced_version", synced)
		return nil
	}
	return w.syncNow(ctx, msg.UserID)
}

// syncNow mirrors whatever the local document currently holds.
func (w *SyncWorker) syncNow(ctx context.Context, userID string) error {
	st, found, err := w.local.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load local state: %w", err)
	}
	if !found {
		slog.WarnContext(ctx, "No local state document to sync", "user_id", userID)
		return nil
	}
	version, err := w.local.StateVersion(ctx)
	if err != nil {
		return fmt.Errorf("read state version: %w", err)
	}

	if err := w.remote.Merge(ctx, userID, st); err != nil {
		return fmt.Errorf("merge remote document: %w", err)
	}
	if err := w.local.MarkSynced(ctx, version); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "State mirrored to remote document",
		"user_id", userID,
		"version", version)
	return nil
}

// CatchUp mirrors the local document if any version is unsynced. The
// worker runs it at startup and on a periodic ticker as a safety net
// for messages lost while the queue or worker was down.
func (w *SyncWorker) CatchUp(ctx context.Context, userID string) error {
	current, err := w.local.StateVersion(ctx)
	if err != nil {
		return fmt.Errorf("read state version: %w", err)
	}
	if current == 0 {
		return nil
	}
	synced, err := w.local.SyncedVersion(ctx)
	if err != nil {
		return fmt.Errorf("read synced version: %w", err)
	}
	if synced >= current {
		return nil
	}

	slog.InfoContext(ctx, "Catching up unsynced state",
		"user_id", userID,
		"local_version", current,
		"synced_version", synced)
	return w.syncNow(ctx, userID)
}
