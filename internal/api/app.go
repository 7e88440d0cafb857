package api

import (
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/auth"
	"github.com/powdermilkjuno/habit-tracker/internal/ratelimit"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Remote() storage.RemoteStore
	Auth() auth.Provider
	Sessions() *Sessions
	Limiter() *ratelimit.Limiter
	Now() time.Time
}

type Deps struct {
	Logger   internal.Logger
	Remote   storage.RemoteStore
	Auth     auth.Provider
	Sessions *Sessions
	Limiter  *ratelimit.Limiter
	Clock    func() time.Time
}

type app struct {
	deps Deps
}

func NewApp(d Deps) App {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.New(0, 0)
	}
	return &app{deps: d}
}

func (a *app) Logger() internal.Logger     { return a.deps.Logger }
func (a *app) Remote() storage.RemoteStore { return a.deps.Remote }
func (a *app) Auth() auth.Provider         { return a.deps.Auth }
func (a *app) Sessions() *Sessions         { return a.deps.Sessions }
func (a *app) Limiter() *ratelimit.Limiter { return a.deps.Limiter }
func (a *app) Now() time.Time              { return a.deps.Clock() }

// --- Compile-time assertions ---
var _ App = (*app)(nil)
