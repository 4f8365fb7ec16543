// Package dashboard serves the administration dashboard: the login page and
// the navigation shell around every menu route.
package dashboard

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/mchmarny/dashd/pkg/assets"
	"github.com/mchmarny/dashd/pkg/form"
	"github.com/mchmarny/dashd/pkg/logger"
	"github.com/mchmarny/dashd/pkg/menu"
	"github.com/mchmarny/dashd/pkg/metric"
	"github.com/mchmarny/dashd/pkg/nav"
	"github.com/mchmarny/dashd/pkg/server"
	"github.com/mchmarny/dashd/pkg/session"
)

var (
	version = "dev"     // Set at build time via -ldflags "-X github.com/mchmarny/dashd/pkg/dashboard.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X github.com/mchmarny/dashd/pkg/dashboard.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X github.com/mchmarny/dashd/pkg/dashboard.date=date"
)

const (
	// DefaultLoginWait is how long a login request waits for the
	// authenticator before rendering the busy state.
	DefaultLoginWait = 2 * time.Second

	// DefaultLoginRate is the sustained number of login posts accepted per
	// second from one client address.
	DefaultLoginRate = rate.Limit(1)

	// DefaultLoginBurst is the number of login posts accepted in a burst.
	DefaultLoginBurst = 5

	secretSize = 32
)

// Authenticator checks submitted credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, v form.Values) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, v form.Values) error

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, v form.Values) error {
	return f(ctx, v)
}

// LogAuthenticator accepts every submission after logging it. The password
// is never logged.
type LogAuthenticator struct{}

// Authenticate logs the submission and returns nil.
func (LogAuthenticator) Authenticate(ctx context.Context, v form.Values) error {
	logger.FromContext(ctx).Info("login submitted",
		"email", v.Email,
		"remember_me", v.RememberMe)
	return nil
}

// App is the dashboard application.
type App struct {
	menu      *menu.Menu
	auth      Authenticator
	loginWait time.Duration
	ttl       time.Duration
	secret    []byte
	secure    bool
	policy    *assets.Policy
	client    *http.Client
	registry  *prometheus.Registry
	rate      rate.Limit
	burst     int
	logLevel  string

	metrics   *metric.Metrics
	validator *form.Validator
	store     *session.Store
	limiter   *limiter
}

// Option configures an App.
type Option func(*App)

// WithAuthenticator sets the credential checker. Defaults to LogAuthenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) { a.auth = auth }
}

// WithLoginWait sets how long a login request waits for the authenticator.
func WithLoginWait(d time.Duration) Option {
	return func(a *App) { a.loginWait = d }
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(d time.Duration) Option {
	return func(a *App) { a.ttl = d }
}

// WithSecret sets the key signing session cookies. A random key is generated
// when none is given, so sessions do not survive a restart.
func WithSecret(secret []byte) Option {
	return func(a *App) { a.secret = secret }
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(a *App) { a.secure = secure }
}

// WithPolicy sets the origins the image proxy may fetch from.
func WithPolicy(p *assets.Policy) Option {
	return func(a *App) { a.policy = p }
}

// WithImageClient sets the HTTP client used by the image proxy.
func WithImageClient(c *http.Client) Option {
	return func(a *App) { a.client = c }
}

// WithRegistry sets the Prometheus registry the counters are registered with.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) { a.registry = reg }
}

// WithLoginRate sets the per-address rate limit of login posts.
func WithLoginRate(r rate.Limit, burst int) Option {
	return func(a *App) {
		a.rate = r
		a.burst = burst
	}
}

// WithLogLevel sets the level of the default logger installed by Run.
// Defaults to the LOG_LEVEL environment variable.
func WithLogLevel(level string) Option {
	return func(a *App) { a.logLevel = level }
}

// New returns the dashboard serving m.
func New(m *menu.Menu, opts ...Option) (*App, error) {
	if m == nil {
		return nil, errors.New("menu is required")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		menu:      m,
		auth:      LogAuthenticator{},
		loginWait: DefaultLoginWait,
		ttl:       session.DefaultTTL,
		policy:    assets.DefaultPolicy(),
		rate:      DefaultLoginRate,
		burst:     DefaultLoginBurst,
		validator: form.NewValidator(form.DefaultMessages()),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}

	if len(a.secret) == 0 {
		a.secret = make([]byte, secretSize)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		slog.Warn("no session secret configured, sessions will not survive a restart")
	}

	store, err := session.NewStore(a.secret, a.newSession,
		session.WithTTL(a.ttl),
		session.WithSecure(a.secure))
	if err != nil {
		return nil, fmt.Errorf("create session store: %w", err)
	}

	a.store = store
	a.metrics = metric.NewMetrics(a.registry)
	a.limiter = newLimiter(a.rate, a.burst)

	return a, nil
}

// newSession populates the widgets of a session. The account entries are
// bound to their named actions here.
func (a *App) newSession(s *session.Session) {
	s.Login = form.NewLogin(a.validator)
	s.Sidebar = nav.NewSidebar(a.menu, s.Document, a.menu.Landing())

	items := make([]nav.UserMenuItem, 0, len(a.menu.UserItems))
	for _, ui := range a.menu.UserItems {
		item := nav.UserMenuItem{Label: ui.Label, Icon: ui.Icon}
		if ui.Action == menu.ActionLogout {
			item.Action = func() {
				slog.Info("user signed out", "session", s.ID)
				s.Login.Reset()
			}
		}
		items = append(items, item)
	}
	s.Account = nav.NewAccountMenu(s.Document, items)
}

// Store returns the session store.
func (a *App) Store() *session.Store {
	return a.store
}

// Options returns the server options serving the dashboard: its routes, the
// observability endpoints, the request middleware and the background sweepers.
func (a *App) Options() []server.Option {
	return []server.Option{
		server.WithRegistry(a.registry),
		server.WithPrometheusMetrics(),
		server.WithSimpleHealth(),
		server.WithMiddleware(a.observe),
		server.WithHandler("/", a.Handler()),
		server.WithRunner(a.store.Run),
		server.WithRunner(a.limiter.Run),
	}
}

// Run starts the dashboard server and blocks until the context is canceled or
// an error occurs.
func (a *App) Run(ctx context.Context, opt ...server.Option) error {
	if a.logLevel != "" {
		logger.SetDefaultLoggerWithLevel("dashd", version, a.logLevel)
	} else {
		logger.SetDefaultLogger("dashd", version)
	}
	slog.Info("starting dashd", "commit", commit, "date", date)

	opt = append(opt, a.Options()...)

	return server.New(opt...).Serve(ctx)
}
