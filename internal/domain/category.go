package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FolderPrefix prefixes the serialized form of a collection reference.
const FolderPrefix = "collection:"

// Fixed category tags. Views such as "all" or "notes" are not categories.
const (
	CategoryAI        = "ai"
	CategoryStreaming = "streaming"
	CategoryMusic     = "music"
	CategorySocial    = "social"
	CategoryGames     = "games"
	CategoryTravel    = "travel"
	CategoryFood      = "food"
	CategoryICloud    = "icloud"
	CategoryTools     = "tools"
	CategoryTesla     = "tesla"
	CategoryPersonal  = "personal"
)

// FixedCategories lists the built-in groupings in display order.
var FixedCategories = []string{
	CategoryAI,
	CategoryStreaming,
	CategoryMusic,
	CategorySocial,
	CategoryGames,
	CategoryTravel,
	CategoryFood,
	CategoryICloud,
	CategoryTools,
	CategoryTesla,
	CategoryPersonal,
}

// IsFixedCategory reports whether tag is one of FixedCategories.
func IsFixedCategory(tag string) bool {
	for _, c := range FixedCategories {
		if c == tag {
			return true
		}
	}
	return false
}

type categoryKind uint8

const (
	kindNone categoryKind = iota
	kindFixed
	kindFolder
)

// CategoryRef is either a fixed category tag or a reference to a user collection.
// On the wire it is the tag itself or "collection:<id>".
type CategoryRef struct {
	kind categoryKind
	key  string
}

// Fixed builds a reference to a built-in category.
func Fixed(tag string) CategoryRef { return CategoryRef{kind: kindFixed, key: tag} }

// Folder builds a reference to a user collection.
func Folder(collectionID string) CategoryRef { return CategoryRef{kind: kindFolder, key: collectionID} }

// ParseCategory parses the serialized form. Unknown fixed tags are rejected.
func ParseCategory(s string) (CategoryRef, error) {
	s = strings.TrimSpace(s)
	if id, ok := strings.CutPrefix(s, FolderPrefix); ok {
		if id == "" {
			return CategoryRef{}, fmt.Errorf("%w: empty collection id", ErrUnknownCategory)
		}
		return Folder(id), nil
	}
	if !IsFixedCategory(s) {
		return CategoryRef{}, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return Fixed(s), nil
}

func (c CategoryRef) IsZero() bool   { return c.kind == kindNone }
func (c CategoryRef) IsFolder() bool { return c.kind == kindFolder }

// FolderID returns the collection id for folder references and "" otherwise.
func (c CategoryRef) FolderID() string {
	if c.kind != kindFolder {
		return ""
	}
	return c.key
}

// Tag returns the fixed tag for fixed references and "" otherwise.
func (c CategoryRef) Tag() string {
	if c.kind != kindFixed {
		return ""
	}
	return c.key
}

func (c CategoryRef) String() string {
	switch c.kind {
	case kindFixed:
		return c.key
	case kindFolder:
		return FolderPrefix + c.key
	default:
		return ""
	}
}

func (c CategoryRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON is lenient about unknown fixed tags so that a snapshot written by a
// newer client still decodes; validation happens at the gateway.
func (c *CategoryRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch {
	case s == "":
		*c = CategoryRef{}
	case strings.HasPrefix(s, FolderPrefix):
		*c = Folder(strings.TrimPrefix(s, FolderPrefix))
	default:
		*c = Fixed(s)
	}
	return nil
}
