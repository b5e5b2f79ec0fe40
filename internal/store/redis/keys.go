package redis

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

const (
	// KeyPrefixDoc is the prefix for document keys
	KeyPrefixDoc = "launchpad:users:"
	// KeyPrefixIndex is the prefix for per-collection id sets
	KeyPrefixIndex = "launchpad:index:users:"
	// KeyPrefixChannel is the prefix for per-collection change channels
	KeyPrefixChannel = "launchpad:changes:users:"
)

// DocKey returns the Redis key for a document
// Example: launchpad:users:{owner}:links:{id}
func DocKey(p remote.Path) string {
	return KeyPrefixDoc + p.Owner + ":" + p.Collection + ":" + p.ID
}

// IndexKey returns the key of the set holding every document id of p's collection
func IndexKey(p remote.Path) string {
	return KeyPrefixIndex + p.Owner + ":" + p.Collection
}

// ChannelKey returns the pub/sub channel notified on every write to p's collection
func ChannelKey(p remote.Path) string {
	return KeyPrefixChannel + p.Owner + ":" + p.Collection
}

// ParseDocKey extracts the path from a document key
func ParseDocKey(key string) (remote.Path, error) {
	rest, ok := strings.CutPrefix(key, KeyPrefixDoc)
	if !ok {
		return remote.Path{}, fmt.Errorf("invalid document key: %s", key)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return remote.Path{}, fmt.Errorf("invalid document key: %s", key)
	}
	return remote.DocPath(parts[0], parts[1], parts[2]), nil
}
