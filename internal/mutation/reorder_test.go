package mutation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

func viewNames(f *fixture, cat domain.CategoryRef) []string {
	items := f.order.Sorted(f.cache.ShortcutsIn(cat))
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Name
	}
	return out
}

func TestReorderPinnedScenario(t *testing.T) {
	f := newFixture(t)
	streaming := domain.Fixed(domain.CategoryStreaming)

	a := f.mustCreate(t, "A", "a.example.com", streaming)
	b := f.mustCreate(t, "B", "b.example.com", streaming)
	c := f.mustCreate(t, "C", "c.example.com", streaming)
	if a.Order != 0 || b.Order != 1 || c.Order != 2 {
		t.Fatalf("orders = %d,%d,%d", a.Order, b.Order, c.Order)
	}

	if _, err := f.gw.TogglePin(c.ID); err != nil {
		t.Fatal(err)
	}
	if got := viewNames(f, streaming); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Fatalf("view after pin = %v", got)
	}

	if _, err := f.gw.Reorder(a.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	// A is spliced into C's slot of the displayed sequence [C A B], giving
	// [A C B] once reindexed. Pinning still wins at display time.
	wantOrders := map[string]int{"A": 0, "C": 1, "B": 2}
	for _, s := range f.cache.ShortcutsIn(streaming) {
		if s.Order != wantOrders[s.Name] {
			t.Errorf("%s order = %d, want %d", s.Name, s.Order, wantOrders[s.Name])
		}
	}
	if got := viewNames(f, streaming); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("view after reorder = %v, want [C A B]", got)
	}

	f.flush(t)
	for _, s := range f.cache.ShortcutsIn(streaming) {
		fields, _ := f.store.Get(remote.DocPath(owner, remote.Links, s.ID))
		if int(toFloat(fields["order"])) != s.Order {
			t.Errorf("%s remote order = %v, cached %d", s.Name, fields["order"], s.Order)
		}
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return -1
	}
}

func TestReorderIsIdempotent(t *testing.T) {
	f := newFixture(t)
	tools := domain.Fixed(domain.CategoryTools)
	var ids []string
	for _, n := range []string{"a", "b", "c", "d"} {
		ids = append(ids, f.mustCreate(t, n, n+".example.com", tools).ID)
	}

	if _, err := f.gw.Reorder(ids[3], ids[1]); err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "d", "b", "c"}
	if got := viewNames(f, tools); !reflect.DeepEqual(got, want) {
		t.Fatalf("view = %v, want %v", got, want)
	}
	f.flush(t)
	writes := len(f.store.Ops())

	changes, err := f.gw.Reorder(ids[3], ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("repeated move produced changes %+v", changes)
	}
	f.flush(t)
	if len(f.store.Ops()) != writes {
		t.Error("repeated move issued remote writes")
	}
	if got := viewNames(f, tools); !reflect.DeepEqual(got, want) {
		t.Errorf("view changed on repeat: %v", got)
	}
}

func TestReorderAcrossCategories(t *testing.T) {
	f := newFixture(t)
	a := f.mustCreate(t, "a", "a.example.com", domain.Fixed(domain.CategoryAI))
	b := f.mustCreate(t, "b", "b.example.com", domain.Fixed(domain.CategoryGames))

	if _, err := f.gw.Reorder(a.ID, b.ID); !errors.Is(err, domain.ErrCrossCategory) {
		t.Errorf("expected ErrCrossCategory, got %v", err)
	}
}
