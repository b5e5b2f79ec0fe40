package syncer

import (
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// apply replaces the cached rows of one collection with the snapshot content.
// Undecodable documents are skipped, not fatal.
func (e *Engine) apply(coll string, docs []remote.Document) {
	switch coll {
	case remote.Profile:
		e.cache.ReplaceProfile(e.decodeProfile(docs), coll)

	case remote.Links:
		out := make([]*domain.Shortcut, 0, len(docs))
		for _, d := range docs {
			var s domain.Shortcut
			if !e.decode(coll, d, &s) {
				continue
			}
			s.ID = d.ID
			if s.URL == "" {
				// A merge write raced a delete and left a partial document.
				e.logger.Debug("skipping shortcut without url", logger.String("id", d.ID))
				continue
			}
			out = append(out, &s)
		}
		e.cache.ReplaceShortcuts(out, coll)

	case remote.Collections:
		out := make([]*domain.Collection, 0, len(docs))
		for _, d := range docs {
			var c domain.Collection
			if !e.decode(coll, d, &c) {
				continue
			}
			c.ID = d.ID
			out = append(out, &c)
		}
		e.cache.ReplaceCollections(out, coll)

	case remote.Notes:
		out := make([]*domain.Note, 0, len(docs))
		for _, d := range docs {
			var n domain.Note
			if !e.decode(coll, d, &n) {
				continue
			}
			n.ID = d.ID
			out = append(out, &n)
		}
		e.cache.ReplaceNotes(out, coll)
	}
}

func (e *Engine) decodeProfile(docs []remote.Document) *domain.Profile {
	for _, d := range docs {
		if d.ID != remote.ProfileDocID {
			continue
		}
		var p domain.Profile
		if !e.decode(remote.Profile, d, &p) {
			return nil
		}
		return &p
	}
	return nil
}

func (e *Engine) decode(coll string, d remote.Document, dst any) bool {
	if err := d.Decode(dst); err != nil {
		e.logger.Warn("skipping undecodable document",
			logger.String("collection", coll),
			logger.String("id", d.ID),
			logger.Error(err))
		return false
	}
	return true
}
