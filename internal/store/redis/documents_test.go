package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(client, logger.NewNop())
	store.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	return store, mr
}

func waitSnapshot(t *testing.T, sub remote.Subscription, match func(remote.Snapshot) bool) remote.Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				t.Fatal("subscription closed")
			}
			if match(snap) {
				return snap
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestCreateAndLoad(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()
	p := remote.DocPath("owner-1", remote.Links, "a1")

	err := store.Create(ctx, p, remote.Fields{"name": "Netflix", "createdAt": remote.ServerTimestamp})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !mr.Exists(DocKey(p)) {
		t.Fatalf("expected key %s to exist", DocKey(p))
	}
	if ok, _ := mr.SIsMember(IndexKey(p), "a1"); !ok {
		t.Errorf("expected a1 in index %s", IndexKey(p))
	}

	docs, err := store.load(ctx, p.CollectionOnly())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Fields["createdAt"] != "2026-02-03T04:05:06Z" {
		t.Errorf("createdAt = %v", docs[0].Fields["createdAt"])
	}
}

func TestMergeWrite(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	p := remote.DocPath("owner-1", remote.Links, "a1")

	if err := store.Create(ctx, p, remote.Fields{"name": "Netflix", "order": 0}); err != nil {
		t.Fatal(err)
	}
	if err := store.MergeWrite(ctx, p, remote.Fields{"categoryId": "personal"}); err != nil {
		t.Fatalf("MergeWrite failed: %v", err)
	}

	docs, err := store.load(ctx, p.CollectionOnly())
	if err != nil {
		t.Fatal(err)
	}
	f := docs[0].Fields
	if f["name"] != "Netflix" || f["categoryId"] != "personal" {
		t.Errorf("unexpected merged fields %+v", f)
	}
}

func TestMergeWriteCreatesMissing(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	p := remote.DocPath("owner-1", remote.Profile, remote.ProfileDocID)

	if err := store.MergeWrite(ctx, p, remote.Fields{"name": "Ada"}); err != nil {
		t.Fatalf("MergeWrite failed: %v", err)
	}
	docs, _ := store.load(ctx, p.CollectionOnly())
	if len(docs) != 1 || docs[0].Fields["name"] != "Ada" {
		t.Errorf("expected created profile, got %+v", docs)
	}
}

func TestDelete(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()
	p := remote.DocPath("owner-1", remote.Notes, "n1")

	if err := store.Create(ctx, p, remote.Fields{"text": "x"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, p); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mr.Exists(DocKey(p)) {
		t.Error("document still exists")
	}
	if err := store.Delete(ctx, p); err != nil {
		t.Errorf("deleting a missing document should succeed, got %v", err)
	}
}

func TestSubscribeStreamsSnapshots(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	coll := remote.CollectionPath("owner-1", remote.Collections)

	sub, err := store.Subscribe(ctx, coll)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	waitSnapshot(t, sub, func(s remote.Snapshot) bool { return s.Err == nil && len(s.Docs) == 0 })

	if err := store.Create(ctx, coll.Doc("c1"), remote.Fields{"name": "Work"}); err != nil {
		t.Fatal(err)
	}
	snap := waitSnapshot(t, sub, func(s remote.Snapshot) bool { return len(s.Docs) == 1 })
	if snap.Collection != remote.Collections || snap.Docs[0].ID != "c1" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if err := store.Delete(ctx, coll.Doc("c1")); err != nil {
		t.Fatal(err)
	}
	waitSnapshot(t, sub, func(s remote.Snapshot) bool { return s.Err == nil && len(s.Docs) == 0 })
}

func TestSubscribeCloseReleases(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.Subscribe(ctx, remote.CollectionPath("owner-1", remote.Links))
	if err != nil {
		t.Fatal(err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	for range sub.Snapshots() {
	}
}

func TestParseDocKey(t *testing.T) {
	p := remote.DocPath("o", remote.Links, "x")
	got, err := ParseDocKey(DocKey(p))
	if err != nil {
		t.Fatalf("ParseDocKey failed: %v", err)
	}
	if got != p {
		t.Errorf("ParseDocKey() = %+v, want %+v", got, p)
	}
	if _, err := ParseDocKey("launchpad:users:o:links"); err == nil {
		t.Error("expected error for short key")
	}
}
