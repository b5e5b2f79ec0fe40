package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/launch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

func newTestCatalog(t *testing.T, path string) *Catalog {
	t.Helper()
	c, err := New(NewLoader(path), NewMapper(domain.FaviconIcon), logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestDefaults(t *testing.T) {
	c := newTestCatalog(t, "")

	streaming := c.Apps(domain.CategoryStreaming)
	if len(streaming) != 8 {
		t.Fatalf("streaming apps = %d, want 8", len(streaming))
	}
	first := streaming[0]
	if first.Name != "Netflix" || first.ID != "catalog:streaming:netflix" {
		t.Errorf("first streaming app = %+v", first)
	}
	if !first.ReadOnly || first.Category != domain.Fixed(domain.CategoryStreaming) {
		t.Errorf("catalog app must be read-only in its category: %+v", first)
	}
	if first.IconURL != domain.FaviconIcon("www.netflix.com") {
		t.Errorf("icon = %q", first.IconURL)
	}

	if got := c.Apps(domain.CategoryStreaming)[2].ID; got != "catalog:streaming:disneyplus" {
		t.Errorf("slug = %q", got)
	}
	if len(c.Apps(domain.CategoryPersonal)) != 0 {
		t.Error("personal has no built-in apps")
	}
	if app, ok := c.App("catalog:tesla:tessie"); !ok || app.URL != "https://www.tessie.com" {
		t.Errorf("App(tessie) = %+v, %v", app, ok)
	}
	if _, ok := c.App("catalog:tesla:nope"); ok {
		t.Error("App returned an unknown id")
	}
	if c.Label(domain.CategoryFood) != "Resto" {
		t.Errorf("label = %q", c.Label(domain.CategoryFood))
	}
	if c.Label("unknown") != "unknown" {
		t.Error("unknown label should fall back to the tag")
	}

	hume, ok := c.Provider("hume")
	if !ok || !hume.VoiceOnly {
		t.Fatalf("hume provider = %+v, %v", hume, ok)
	}
	if got := len(c.Providers()); got != 6 {
		t.Errorf("providers = %d, want 6", got)
	}
	if c.Providers()[0].ID != "gemini" {
		t.Errorf("provider order not preserved: %s", c.Providers()[0].ID)
	}
	if c.Count() != len(c.AllApps()) {
		t.Errorf("Count %d != AllApps %d", c.Count(), len(c.AllApps()))
	}
}

func TestAppsReturnsCopies(t *testing.T) {
	c := newTestCatalog(t, "")
	c.Apps(domain.CategoryAI)[0].Name = "changed"
	if c.Apps(domain.CategoryAI)[0].Name == "changed" {
		t.Fatal("Apps leaked internal state")
	}
}

func TestMapperSkipsInvalidApps(t *testing.T) {
	f := &File{Categories: []CategoryEntry{{
		ID: "tools",
		Apps: []AppEntry{
			{Name: "Good", URL: "example.com"},
			{Name: "Bad", URL: "mailto:x@example.com"},
			{Name: " ", URL: "https://blank.example"},
			{Name: "Good", URL: "https://other.example"},
		},
	}}}
	snap, warnings, err := NewMapper(nil).Map(f)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(snap.apps["tools"]) != 1 {
		t.Fatalf("apps = %d, want 1", len(snap.apps["tools"]))
	}
	if snap.apps["tools"][0].URL != "https://example.com" {
		t.Errorf("url = %q", snap.apps["tools"][0].URL)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestMapperErrors(t *testing.T) {
	tests := []struct {
		name string
		file *File
	}{
		{"unknown category", &File{Categories: []CategoryEntry{{ID: "all"}}}},
		{"provider without id", &File{Providers: []launch.Provider{{Name: "x"}}}},
		{"duplicate provider", &File{Providers: []launch.Provider{{ID: "a"}, {ID: "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := NewMapper(nil).Map(tt.file); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	write := func(s string) {
		if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("categories:\n  - id: tesla\n    apps:\n      - { name: Tessie, url: \"https://www.tessie.com\" }\n")

	c := newTestCatalog(t, path)
	if c.Count() != 1 {
		t.Fatalf("count = %d", c.Count())
	}

	write("categories: [\n")
	if err := c.Reload(); err == nil {
		t.Fatal("expected parse error")
	}
	if c.Count() != 1 {
		t.Fatal("failed reload replaced the snapshot")
	}

	write("categories:\n  - id: tesla\n    apps:\n      - { name: Tessie, url: \"https://www.tessie.com\" }\n      - { name: TeslaFi, url: \"https://www.teslafi.com\" }\n")
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.Count() != 2 {
		t.Fatalf("count after reload = %d", c.Count())
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("widgets: []\n")); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestMissingOverrideFile(t *testing.T) {
	_, err := New(NewLoader(filepath.Join(t.TempDir(), "nope.yaml")), NewMapper(nil), logger.NewNop())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
