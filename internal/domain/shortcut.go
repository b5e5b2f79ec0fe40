package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Shortcut is a user-created link to an external destination.
type Shortcut struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated client-side so the optimistic entry and the
	// remote document share the same key.
	ID string `json:"id,omitempty"`

	// ─────────────────────────────
	// User-editable fields
	// ─────────────────────────────

	Name     string      `json:"name"`
	URL      string      `json:"url"`
	IconURL  string      `json:"icon,omitempty"`
	Category CategoryRef `json:"categoryId"`
	Pinned   bool        `json:"pinned"`

	// Order positions the shortcut inside its category. Values need not be
	// contiguous; ties fall back to name and creation time.
	Order int `json:"order"`

	// ─────────────────────────────
	// Metadata (server-assigned)
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`

	// ReadOnly marks entries that come from the built-in catalog.
	ReadOnly bool `json:"readOnly,omitempty"`
}

// Clone returns a shallow copy safe to mutate.
func (s *Shortcut) Clone() *Shortcut {
	c := *s
	return &c
}

// ShortcutPatch is a merge patch: nil fields are left untouched.
type ShortcutPatch struct {
	Name     *string
	URL      *string
	IconURL  *string
	Category *CategoryRef
	Pinned   *bool
	Order    *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ShortcutPatch) IsEmpty() bool {
	return p.Name == nil && p.URL == nil && p.IconURL == nil &&
		p.Category == nil && p.Pinned == nil && p.Order == nil
}

// IconResolver maps a hostname to an icon URL.
type IconResolver func(hostname string) string

// FaviconIcon resolves icons through the public favicon endpoint used by the dashboard.
func FaviconIcon(hostname string) string {
	return "https://www.google.com/s2/favicons?sz=128&domain=" + url.QueryEscape(hostname)
}

var (
	explicitScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	// opaqueScheme matches "mailto:", "javascript:" and friends but not "host:8080".
	opaqueScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:[^0-9]`)
)

// NormalizeURL trims raw, prefixes https:// when no scheme is present and rejects
// anything that is not an absolute http(s) URL with a host.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	candidate := trimmed
	if !explicitScheme.MatchString(trimmed) {
		if opaqueScheme.MatchString(trimmed) {
			return "", fmt.Errorf("%w: scheme not allowed in %q", ErrInvalidURL, trimmed)
		}
		candidate = "https://" + trimmed
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if err := CheckURL(u); err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u.String(), nil
}

// CheckURL validates an already-parsed URL against the scheme whitelist.
func CheckURL(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" || strings.ContainsAny(host, " \t") {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Hostname returns the host part of an already-normalized URL.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
