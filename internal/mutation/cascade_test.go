package mutation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

func TestDeleteCollectionMigratesMembers(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d members", n), func(t *testing.T) {
			f := newFixture(t)
			col, err := f.gw.CreateCollection("Vacances")
			if err != nil {
				t.Fatal(err)
			}
			other, _ := f.gw.CreateCollection("Travail")

			var members []*domain.Shortcut
			for i := 0; i < n; i++ {
				members = append(members, f.mustCreate(t, fmt.Sprintf("m%d", i), fmt.Sprintf("m%d.example.com", i), col.Ref()))
			}
			bystander := f.mustCreate(t, "keep", "keep.example.com", other.Ref())
			f.flush(t)

			moved, err := f.gw.DeleteCollection(col.ID)
			if err != nil {
				t.Fatalf("DeleteCollection() error = %v", err)
			}
			if moved != n {
				t.Errorf("moved = %d, want %d", moved, n)
			}

			// Local state is already consistent before the remote phase lands.
			if c := f.cache.CountIn(col.Ref()); c != 0 {
				t.Errorf("%d cached shortcuts still reference the collection", c)
			}
			if _, ok := f.cache.Collection(col.ID); ok {
				t.Error("collection still cached")
			}

			f.flush(t)

			fallback := domain.Fixed(domain.CategoryPersonal)
			for _, m := range members {
				fields, ok := f.store.Get(remote.DocPath(owner, remote.Links, m.ID))
				if !ok {
					t.Fatalf("member %s vanished from the store", m.ID)
				}
				if fields["categoryId"] != fallback.String() {
					t.Errorf("member %s categoryId = %v", m.ID, fields["categoryId"])
				}
				if fields["name"] != m.Name {
					t.Errorf("merge write clobbered member %s: %+v", m.ID, fields)
				}
			}
			if _, ok := f.store.Get(remote.DocPath(owner, remote.Collections, col.ID)); ok {
				t.Error("collection document still stored")
			}
			if s, _ := f.cache.Shortcut(bystander.ID); s.Category != other.Ref() {
				t.Errorf("bystander moved to %s", s.Category)
			}
			if errs := f.remoteErrors(); len(errs) != 0 {
				t.Errorf("unexpected remote errors %v", errs)
			}
		})
	}
}

func TestDeleteCollectionDeletesAfterMembers(t *testing.T) {
	f := newFixture(t)
	col, _ := f.gw.CreateCollection("Jeux")
	for i := 0; i < 4; i++ {
		f.mustCreate(t, fmt.Sprintf("g%d", i), fmt.Sprintf("g%d.example.com", i), col.Ref())
	}
	f.flush(t)
	before := len(f.store.Ops())

	if _, err := f.gw.DeleteCollection(col.ID); err != nil {
		t.Fatal(err)
	}
	f.flush(t)

	ops := f.store.Ops()[before:]
	if len(ops) != 5 {
		t.Fatalf("expected 4 merges and 1 delete, got %+v", ops)
	}
	last := ops[len(ops)-1]
	if last.Kind != "delete" || last.Path.Collection != remote.Collections {
		t.Errorf("collection delete must come last, got %+v", last)
	}
	for _, op := range ops[:4] {
		if op.Kind != "merge" || op.Path.Collection != remote.Links {
			t.Errorf("unexpected op before delete: %+v", op)
		}
	}
}

func TestDeleteCollectionKeepsParentOnPartialFailure(t *testing.T) {
	f := newFixture(t)
	col, _ := f.gw.CreateCollection("Famille")
	a := f.mustCreate(t, "a", "a.example.com", col.Ref())
	f.mustCreate(t, "b", "b.example.com", col.Ref())
	f.flush(t)

	f.store.FailWrites(remote.DocPath(owner, remote.Links, a.ID), errors.New("deadline exceeded"))

	if _, err := f.gw.DeleteCollection(col.ID); err != nil {
		t.Fatal(err)
	}
	f.flush(t)

	if _, ok := f.store.Get(remote.DocPath(owner, remote.Collections, col.ID)); !ok {
		t.Fatal("collection must not be deleted while a member still references it")
	}
	errs := f.remoteErrors()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrRemoteUnavailable) {
		t.Fatalf("remote errors = %v", errs)
	}
	for _, op := range f.store.Ops() {
		if op.Kind == "delete" {
			t.Errorf("no delete expected, got %+v", op)
		}
	}
}

func TestDeleteCollectionCustomFallback(t *testing.T) {
	f := newFixture(t)
	f.gw.opts.Fallback = domain.Fixed(domain.CategoryTools)

	col, _ := f.gw.CreateCollection("Divers")
	s := f.mustCreate(t, "x", "x.example.com", col.Ref())
	if _, err := f.gw.DeleteCollection(col.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.cache.Shortcut(s.ID)
	if got.Category != domain.Fixed(domain.CategoryTools) {
		t.Errorf("category = %s, want tools", got.Category)
	}
	if _, err := f.gw.DeleteCollection(col.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}
