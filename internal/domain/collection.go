package domain

import (
	"fmt"
	"strings"
	"time"
)

// Collection is a user-defined folder. Shortcuts reference it through Folder(ID).
type Collection struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Ref returns the category reference shortcuts use to point at c.
func (c *Collection) Ref() CategoryRef { return Folder(c.ID) }

// CleanName trims a collection or shortcut name and rejects blanks.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidField)
	}
	return name, nil
}
