package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// OpenMode selects how a launched URL is presented.
type OpenMode string

const (
	OpenTab        OpenMode = "tab"
	OpenFullscreen OpenMode = "fullscreen"
)

func ParseOpenMode(s string) (OpenMode, error) {
	switch m := OpenMode(strings.ToLower(strings.TrimSpace(s))); m {
	case OpenTab, OpenFullscreen:
		return m, nil
	default:
		return "", fmt.Errorf("%w: open mode %q", ErrInvalidField, s)
	}
}

// Profile defaults applied when no remote document exists yet.
const (
	DefaultDisplayName = "Pilote"
	DefaultAccentColor = "#E82127"
	DefaultOpenMode    = OpenTab
)

// ThemeColors is the palette offered for the accent color.
var ThemeColors = []string{
	"#E82127", "#00F2FF", "#C1FF00", "#BC00FF", "#FF8A00", "#FF007A",
	"#FFFFFF", "#FFE600", "#8B0000", "#00FFCC", "#6600FF", "#D4AF37",
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Profile is the per-user singleton.
type Profile struct {
	DisplayName string   `json:"name"`
	AccentColor string   `json:"color"`
	OpenMode    OpenMode `json:"openMode"`
}

func DefaultProfile() Profile {
	return Profile{
		DisplayName: DefaultDisplayName,
		AccentColor: DefaultAccentColor,
		OpenMode:    DefaultOpenMode,
	}
}

// WithDefaults fills blank fields of a partially written remote document.
func (p Profile) WithDefaults() Profile {
	d := DefaultProfile()
	if p.DisplayName == "" {
		p.DisplayName = d.DisplayName
	}
	if p.AccentColor == "" {
		p.AccentColor = d.AccentColor
	}
	if p.OpenMode == "" {
		p.OpenMode = d.OpenMode
	}
	return p
}

// ProfilePatch is a merge patch over Profile.
type ProfilePatch struct {
	DisplayName *string   `json:"name,omitempty"`
	AccentColor *string   `json:"color,omitempty"`
	OpenMode    *OpenMode `json:"openMode,omitempty"`
}

// Validate normalizes the patch in place.
func (p *ProfilePatch) Validate() error {
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		if name == "" {
			return fmt.Errorf("%w: display name is empty", ErrInvalidField)
		}
		p.DisplayName = &name
	}
	if p.AccentColor != nil && !hexColor.MatchString(*p.AccentColor) {
		return fmt.Errorf("%w: accent color %q", ErrInvalidField, *p.AccentColor)
	}
	if p.OpenMode != nil {
		m, err := ParseOpenMode(string(*p.OpenMode))
		if err != nil {
			return err
		}
		p.OpenMode = &m
	}
	return nil
}

// Apply merges the patch into a copy of p.
func (p ProfilePatch) Apply(base Profile) Profile {
	if p.DisplayName != nil {
		base.DisplayName = *p.DisplayName
	}
	if p.AccentColor != nil {
		base.AccentColor = *p.AccentColor
	}
	if p.OpenMode != nil {
		base.OpenMode = *p.OpenMode
	}
	return base
}
