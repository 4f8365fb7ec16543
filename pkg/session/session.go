// Package session keeps the interaction state of each browser in memory.
//
// A browser is identified by a cookie carrying a signed token whose subject
// is the session id. Sessions idle for longer than the store TTL are swept
// and their outside-interaction listeners released.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mchmarny/dashd/pkg/dismiss"
	"github.com/mchmarny/dashd/pkg/form"
	"github.com/mchmarny/dashd/pkg/nav"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "dashd_session"

	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultSweepInterval is how often expired sessions are evicted.
	DefaultSweepInterval = time.Minute

	issuer = "dashd"
)

// Session is the UI state of one browser. Callers hold the lock while reading
// or mutating the sidebar and the account menu. The login form synchronizes
// itself.
type Session struct {
	sync.Mutex

	ID       string
	Document *dismiss.Document
	Sidebar  *nav.Sidebar
	Account  *nav.AccountMenu
	Login    *form.Login

	// Pending yields the outcome of a login submission that was still running
	// when its request returned.
	Pending <-chan error

	lastSeen time.Time
}

// Release stops every outside-interaction listener of the session.
func (s *Session) Release() {
	s.Lock()
	defer s.Unlock()

	if s.Sidebar != nil {
		s.Sidebar.Release()
	}
	if s.Account != nil {
		s.Account.Release()
	}
}

// Factory populates the widgets of a new session. The document is already set.
type Factory func(s *Session)

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an idle session is kept. Defaults to DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

// WithSweepInterval sets how often Run evicts expired sessions.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) { s.sweepInterval = d }
}

// WithSecure marks the session cookie Secure, for deployments served over TLS.
func WithSecure(secure bool) Option {
	return func(s *Store) { s.secure = secure }
}

// WithClock replaces the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the sessions of every connected browser.
type Store struct {
	secret        []byte
	factory       Factory
	ttl           time.Duration
	sweepInterval time.Duration
	secure        bool
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty store signing its tokens with secret.
func NewStore(secret []byte, factory Factory, opts ...Option) (*Store, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}

	s := &Store{
		secret:        secret,
		factory:       factory,
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		sessions:      make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Get returns the live session with the given id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

// Create starts a new session.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		Document: dismiss.NewDocument(),
	}
	if s.factory != nil {
		s.factory(sess)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess

	slog.Debug("session created", "session", sess.ID)

	return sess
}

// Delete ends the session with the given id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Release()
	}
}

// End deletes the session with the given id and expires its cookie.
func (s *Store) End(w http.ResponseWriter, id string) {
	s.Delete(id)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// claims are the registered claims of a session token.
type claims struct {
	jwt.RegisteredClaims
}

// Token returns a signed token identifying sess.
func (s *Store) Token(sess *Session) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the session id it carries.
func (s *Store) Parse(token string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	return c.Subject, nil
}

// Load returns the session of the request's cookie, creating a new one when
// the cookie is missing, invalid, expired or names an evicted session.
// The cookie is (re)issued on every call so its expiry slides with activity.
func (s *Store) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	var sess *Session

	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := s.Parse(c.Value); err == nil {
			sess, _ = s.Get(id)
		} else {
			slog.Debug("discarding session token", "error", err)
		}
	}

	if sess == nil {
		sess = s.Create()
	}

	token, err := s.Token(sess)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Sweep evicts the sessions idle since before now minus the TTL and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Release()
	}

	return len(expired)
}

// Run sweeps expired sessions on a ticker until ctx is canceled.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				slog.Info("sessions swept", "count", n, "remaining", s.Len())
			}
		}
	}
}
