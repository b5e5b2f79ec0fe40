package domain

import (
	"errors"
	"testing"
)

func TestProfilePatch(t *testing.T) {
	name := "  Ada "
	color := "#00F2FF"
	mode := OpenMode("FULLSCREEN")

	p := ProfilePatch{DisplayName: &name, AccentColor: &color, OpenMode: &mode}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	got := p.Apply(DefaultProfile())
	want := Profile{DisplayName: "Ada", AccentColor: "#00F2FF", OpenMode: OpenFullscreen}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestProfilePatchInvalid(t *testing.T) {
	bad := "red"
	blank := " "
	mode := OpenMode("popup")

	cases := map[string]ProfilePatch{
		"color": {AccentColor: &bad},
		"name":  {DisplayName: &blank},
		"mode":  {OpenMode: &mode},
	}
	for name, p := range cases {
		if err := p.Validate(); !errors.Is(err, ErrInvalidField) {
			t.Errorf("%s: expected ErrInvalidField, got %v", name, err)
		}
	}
}

func TestProfileWithDefaults(t *testing.T) {
	got := Profile{AccentColor: "#FFFFFF"}.WithDefaults()
	if got.DisplayName != DefaultDisplayName || got.OpenMode != OpenTab || got.AccentColor != "#FFFFFF" {
		t.Errorf("WithDefaults() = %+v", got)
	}
}
