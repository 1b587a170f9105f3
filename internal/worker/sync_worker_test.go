package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/amqp"
	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/docstore/memory"
	"github.com/techcolloid1243/finance-planner/internal/storage"
)

func newWorker(t *testing.T) (*SyncWorker, *storage.LocalStore, *memory.Store) {
	t.Helper()
	local, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })
	remote := memory.New()
	return NewSyncWorker(local, remote), local, remote
}

func TestHandleSyncMessageMirrors(t *testing.T) {
	w, local, remote := newWorker(t)
	ctx := context.Background()

	st := core.DefaultState()
	st.MyMonthlyIncome = decimal.NewFromInt(50000)
	version, err := local.SaveState(ctx, st)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewStateSyncMessage("u1", version)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, found, err := remote.Get(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("remote get: found=%v err=%v", found, err)
	}
	if !got.MyMonthlyIncome.Equal(st.MyMonthlyIncome) {
		t.Fatalf("mirrored income = %s", got.MyMonthlyIncome)
	}
	synced, err := local.SyncedVersion(ctx)
	if err != nil || synced != version {
		t.Fatalf("synced version = %d, err %v", synced, err)
	}
}

func TestHandleSyncMessageSkipsCoveredVersions(t *testing.T) {
	w, local, remote := newWorker(t)
	ctx := context.Background()

	version, err := local.SaveState(ctx, core.DefaultState())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := w.HandleSyncMessage(ctx, amqp.NewStateSyncMessage("u1", version)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// A replayed or stale message is a no-op.
	if err := w.HandleSyncMessage(ctx, amqp.NewStateSyncMessage("u1", version)); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if remote.Merges() != 1 {
		t.Fatalf("merges = %d", remote.Merges())
	}
}

func TestHandleSyncMessageWithoutLocalDocument(t *testing.T) {
	w, _, remote := newWorker(t)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewStateSyncMessage("u1", 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if remote.Merges() != 0 {
		t.Fatalf("merged a nonexistent document")
	}
}

func TestCatchUp(t *testing.T) {
	w, local, remote := newWorker(t)
	ctx := context.Background()

	// Nothing local yet: catch-up is a no-op.
	if err := w.CatchUp(ctx, "u1"); err != nil {
		t.Fatalf("catch up: %v", err)
	}
	if remote.Merges() != 0 {
		t.Fatalf("merges = %d", remote.Merges())
	}

	if _, err := local.SaveState(ctx, core.DefaultState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := w.CatchUp(ctx, "u1"); err != nil {
		t.Fatalf("catch up: %v", err)
	}
	if remote.Merges() != 1 {
		t.Fatalf("merges = %d", remote.Merges())
	}

	// Fully synced: nothing further to do.
	if err := w.CatchUp(ctx, "u1"); err != nil {
		t.Fatalf("catch up: %v", err)
	}
	if remote.Merges() != 1 {
		t.Fatalf("merges = %d", remote.Merges())
	}
}
