package mutation

import (
	"context"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// UpdateProfile merges patch into the profile. It always applies locally; the
// remote write is skipped while no owner is bound.
func (g *Gateway) UpdateProfile(patch domain.ProfilePatch) (domain.Profile, error) {
	if err := patch.Validate(); err != nil {
		return domain.Profile{}, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	next := patch.Apply(g.cache.Profile())
	cmd := Command{
		Op:    "update_profile",
		Local: func(c *cache.Cache) { c.SetProfile(next) },
	}

	if owner := g.Owner(); owner != "" {
		fields := remote.Fields{}
		if patch.DisplayName != nil {
			fields["name"] = next.DisplayName
		}
		if patch.AccentColor != nil {
			fields["color"] = next.AccentColor
		}
		if patch.OpenMode != nil {
			fields["openMode"] = string(next.OpenMode)
		}
		path := remote.DocPath(owner, remote.Profile, remote.ProfileDocID)
		cmd.Target = path.String()
		cmd.Remote = func(ctx context.Context, store remote.Store) error {
			return store.MergeWrite(ctx, path, fields)
		}
	}

	g.apply(cmd)
	return next, nil
}
