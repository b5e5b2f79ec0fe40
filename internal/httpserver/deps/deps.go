package deps

import (
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/catalog"
	"github.com/MrSnakeDoc/launchpad/internal/identity"
	"github.com/MrSnakeDoc/launchpad/internal/launch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
	"github.com/MrSnakeDoc/launchpad/internal/session"
	"github.com/MrSnakeDoc/launchpad/internal/view"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access /reload
	AllowedCIDRS []string         // IPs allowed to access ops endpoints
	AllowOrigins []string         // CORS origins allowed on /api
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	StoreName string                // "redis" | "memory"
	Store     remote.Pinger         // remote store reachability for readyz
	Probe     *scheduler.StoreProbe // last periodic ping, nil when disabled

	Sessions *session.Manager   // open sessions, one per owner
	Identity *identity.Issuer   // token issuance and verification
	Catalog  *catalog.Catalog   // built-in shortcuts and AI providers
	Views    *view.Builder      // read models
	Launcher *launch.Dispatcher // URL dispatch

	SessionBurst        int           // POST /api/session bucket size per IP
	SessionRefillPerMin int           // POST /api/session refill per IP
	ReloadTrigger       chan struct{} // Channel to trigger manual catalog reload
}

// Now returns the current time from TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
