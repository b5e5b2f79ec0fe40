package catalog

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/launch"
)

// Mapper converts a catalog File into read-only shortcuts
type Mapper struct {
	icon domain.IconResolver
}

// NewMapper creates a mapper filling missing icons with icon
func NewMapper(icon domain.IconResolver) *Mapper {
	return &Mapper{icon: icon}
}

// Map validates f and builds a Snapshot. Invalid apps are skipped and reported
// as warnings; an unknown category or a duplicate provider is an error.
func (m *Mapper) Map(f *File) (*Snapshot, []string, error) {
	snap := &Snapshot{
		apps:      make(map[string][]*domain.Shortcut),
		labels:    make(map[string]string),
		providers: make(map[string]launch.Provider),
	}
	var warnings []string

	for _, cat := range f.Categories {
		if !domain.IsFixedCategory(cat.ID) {
			return nil, warnings, fmt.Errorf("%w: catalog category %q", domain.ErrUnknownCategory, cat.ID)
		}
		if cat.Label != "" {
			snap.labels[cat.ID] = cat.Label
		}

		seen := make(map[string]bool, len(cat.Apps))
		for i, app := range cat.Apps {
			url, err := domain.NormalizeURL(app.URL)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s/%s: %v", cat.ID, app.Name, err))
				continue
			}
			name := strings.TrimSpace(app.Name)
			if name == "" {
				warnings = append(warnings, fmt.Sprintf("%s[%d]: missing name", cat.ID, i))
				continue
			}

			id := "catalog:" + cat.ID + ":" + slug(name)
			if seen[id] {
				warnings = append(warnings, fmt.Sprintf("%s/%s: duplicate entry", cat.ID, name))
				continue
			}
			seen[id] = true

			icon := app.Icon
			if icon == "" && m.icon != nil {
				icon = m.icon(domain.Hostname(url))
			}

			snap.apps[cat.ID] = append(snap.apps[cat.ID], &domain.Shortcut{
				ID:       id,
				Name:     name,
				URL:      url,
				IconURL:  icon,
				Category: domain.Fixed(cat.ID),
				Order:    i,
				ReadOnly: true,
			})
		}
	}

	for _, p := range f.Providers {
		if p.ID == "" {
			return nil, warnings, fmt.Errorf("%w: provider without id", domain.ErrInvalidField)
		}
		if _, dup := snap.providers[p.ID]; dup {
			return nil, warnings, fmt.Errorf("%w: duplicate provider %q", domain.ErrInvalidField, p.ID)
		}
		if p.Icon == "" && m.icon != nil {
			target := p.PromptURL
			if target == "" {
				target = p.VoiceURL
			}
			p.Icon = m.icon(domain.Hostname(target))
		}
		snap.providers[p.ID] = p
		snap.providerOrder = append(snap.providerOrder, p.ID)
	}

	return snap, warnings, nil
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == '+':
			b.WriteString("plus")
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
