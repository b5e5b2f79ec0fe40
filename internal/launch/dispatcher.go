// Package launch maps a URL and an open mode to a navigation action.
package launch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// Kind of navigation the host should perform.
type Kind string

const (
	// Open a new unrelated top-level browsing context.
	Open Kind = "open"
	// Navigate the current context.
	Navigate Kind = "navigate"
)

// Action is what the UI shell executes.
type Action struct {
	Kind Kind   `json:"kind"`
	URL  string `json:"url"`
}

// Wrapper derives the fullscreen navigation target from a URL.
type Wrapper func(target string) string

// DefaultRedirect forces the fullscreen-capable video view on in-car browsers.
const DefaultRedirect = "https://www.youtube.com/redirect?q="

// RedirectWrapper wraps the target as an escaped query value of prefix.
// An empty prefix disables wrapping.
func RedirectWrapper(prefix string) Wrapper {
	if prefix == "" {
		return func(target string) string { return target }
	}
	return func(target string) string { return prefix + EscapeComponent(target) }
}

// EscapeComponent escapes s like a URI component: spaces become %20.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Dispatcher holds the injected fullscreen policy. It is otherwise stateless.
type Dispatcher struct {
	wrap Wrapper
}

func New(wrap Wrapper) *Dispatcher {
	if wrap == nil {
		wrap = RedirectWrapper(DefaultRedirect)
	}
	return &Dispatcher{wrap: wrap}
}

// Dispatch maps a resolved URL to an action. Input is expected to be
// normalized already; malformed input fails with ErrInvalidURL.
func (d *Dispatcher) Dispatch(target string, mode domain.OpenMode) (Action, error) {
	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() {
		return Action{}, fmt.Errorf("%w: %q is not absolute", domain.ErrInvalidURL, target)
	}
	if err := domain.CheckURL(u); err != nil {
		return Action{}, err
	}

	switch mode {
	case domain.OpenFullscreen:
		return Action{Kind: Navigate, URL: d.wrap(target)}, nil
	case domain.OpenTab, "":
		return Action{Kind: Open, URL: target}, nil
	default:
		return Action{}, fmt.Errorf("%w: open mode %q", domain.ErrInvalidField, mode)
	}
}
