package launch

import (
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// DefaultSearch is the web search endpoint; the escaped query is appended.
const DefaultSearch = "https://www.google.com/search?q="

// Search opens a web search for query. A blank query yields ErrEmptyInput.
func (d *Dispatcher) Search(query string, mode domain.OpenMode) (Action, error) {
	if strings.TrimSpace(query) == "" {
		return Action{}, domain.ErrEmptyInput
	}
	return d.Dispatch(DefaultSearch+EscapeComponent(query), mode)
}
