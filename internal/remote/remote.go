// Package remote defines the per-user document store the sync layer mirrors.
//
// Documents live under users/{owner}/{collection}/{id}. A Subscription streams
// full snapshots of one collection; there are no diffs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Collection names.
const (
	Profile     = "profile"
	Links       = "links"
	Collections = "collections"
	Notes       = "notes"
)

// ProfileDocID is the id of the singleton profile document.
const ProfileDocID = "profile"

// AllCollections lists every collection a session subscribes to.
var AllCollections = []string{Profile, Links, Collections, Notes}

// ErrNoDocument is returned by MergeWrite targets that must already exist.
var ErrNoDocument = errors.New("document does not exist")

// Path addresses a collection (ID empty) or a single document.
type Path struct {
	Owner      string
	Collection string
	ID         string
}

func CollectionPath(owner, collection string) Path {
	return Path{Owner: owner, Collection: collection}
}

func DocPath(owner, collection, id string) Path {
	return Path{Owner: owner, Collection: collection, ID: id}
}

// Doc returns the document path id inside p's collection.
func (p Path) Doc(id string) Path {
	p.ID = id
	return p
}

// CollectionOnly strips the document id.
func (p Path) CollectionOnly() Path {
	p.ID = ""
	return p
}

func (p Path) String() string {
	s := "users/" + p.Owner + "/" + p.Collection
	if p.ID != "" {
		s += "/" + p.ID
	}
	return s
}

// Validate checks that the path is usable for the given arity.
func (p Path) Validate(wantDoc bool) error {
	if p.Owner == "" || p.Collection == "" {
		return fmt.Errorf("invalid path %q: owner and collection required", p)
	}
	if strings.ContainsAny(p.Owner+p.Collection+p.ID, "/:") {
		return fmt.Errorf("invalid path %q: separator in segment", p)
	}
	if wantDoc && p.ID == "" {
		return fmt.Errorf("invalid path %q: document id required", p)
	}
	return nil
}

// Document is one stored document.
type Document struct {
	ID     string
	Fields Fields
}

// Snapshot is the full content of a collection at one point in time.
// A snapshot with Err set carries no documents and reports a broken stream.
type Snapshot struct {
	Collection string
	Docs       []Document
	Err        error
}

// Subscription is a live stream of snapshots. Close releases it; the channel is
// closed once the stream has stopped.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Close() error
}

// Store is the remote document store.
type Store interface {
	Subscribe(ctx context.Context, p Path) (Subscription, error)
	Create(ctx context.Context, p Path, fields Fields) error
	MergeWrite(ctx context.Context, p Path, fields Fields) error
	Delete(ctx context.Context, p Path) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Offer delivers snap on a buffered(1) channel, replacing an unread older snapshot.
// Consumers only care about the latest full state.
func Offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
