package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mchmarny/dashd/pkg/dismiss"
	"github.com/mchmarny/dashd/pkg/logger"
	"github.com/mchmarny/dashd/pkg/menu"
	"github.com/mchmarny/dashd/pkg/session"
	"github.com/mchmarny/dashd/pkg/view"
)

const (
	// NotFoundTitle is the heading of routes missing from the menu.
	NotFoundTitle = "Page introuvable"

	maxEventBytes = 64 << 10
)

// UI event names reported to the ui_events_total counter.
const (
	EventSidebarCollapse = "sidebar_collapse"
	EventDrawerOpen      = "drawer_open"
	EventDrawerClose     = "drawer_close"
	EventViewport        = "viewport"
	EventItemToggle      = "item_toggle"
	EventAccountToggle   = "account_toggle"
	EventAccountSelect   = "account_select"
	EventOutsideDismiss  = "outside_dismiss"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

// Handler returns the dashboard routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /login", a.withSession(a.loginPage))
	mux.Handle("POST /login", a.limiter.middleware(a.withSession(a.loginSubmit)))
	mux.Handle("POST /login/visibility", a.withSession(a.loginVisibility))
	mux.Handle("POST /login/events", a.withSession(a.loginEvent))

	mux.Handle("GET /api/menu", a.menu.Handler())
	mux.Handle("GET /_image", a.policy.Handler(a.client))

	mux.Handle("POST /ui/sidebar/collapse", a.uiAction(EventSidebarCollapse, func(s *session.Session) {
		s.Sidebar.ToggleCollapsed()
	}))
	mux.Handle("POST /ui/sidebar/drawer/open", a.uiAction(EventDrawerOpen, func(s *session.Session) {
		s.Sidebar.OpenDrawer()
	}))
	mux.Handle("POST /ui/sidebar/drawer/close", a.uiAction(EventDrawerClose, func(s *session.Session) {
		s.Sidebar.CloseDrawer()
	}))
	mux.Handle("POST /ui/sidebar/viewport", a.withSession(a.viewport))
	mux.Handle("POST /ui/sidebar/items/{label}/toggle", a.withSession(a.toggleItem))
	mux.Handle("POST /ui/account/toggle", a.uiAction(EventAccountToggle, func(s *session.Session) {
		s.Account.Toggle()
	}))
	mux.Handle("POST /ui/account/items/{index}", a.withSession(a.selectAccountItem))
	mux.Handle("POST /ui/pointer", a.withSession(a.pointer))

	mux.HandleFunc("GET /{$}", a.root)
	mux.Handle("GET /{path...}", a.withSession(a.shell))

	return mux
}

// withSession loads the session of the request before calling fn.
func (a *App) withSession(fn sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.store.Load(w, r)
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to load session", "error", err)
			writeError(w, http.StatusInternalServerError, "error, see logs for details")
			return
		}

		log := logger.FromContext(r.Context()).With("session", sess.ID)
		fn(w, r.WithContext(logger.WithContext(r.Context(), log)), sess)
	})
}

// uiAction applies fn to the session and redirects back to the page the
// control was posted from.
func (a *App) uiAction(event string, fn func(s *session.Session)) http.Handler {
	return a.withSession(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		s.Lock()
		fn(s)
		s.Unlock()

		a.metrics.UIEvents.Increment(event)
		a.redirectBack(w, r)
	})
}

func (a *App) root(w http.ResponseWriter, r *http.Request) {
	if landing := a.menu.Landing(); landing != "/" {
		http.Redirect(w, r, landing, http.StatusFound)
		return
	}
	a.withSession(a.shell).ServeHTTP(w, r)
}

func (a *App) shell(w http.ResponseWriter, r *http.Request, s *session.Session) {
	route := r.URL.Path

	status := http.StatusOK
	title, ok := a.menu.Lookup(route)
	if !ok {
		status = http.StatusNotFound
		title = NotFoundTitle
	}

	s.Lock()
	s.Sidebar.Navigate(route)
	page := view.ShellPage{
		Title:       title,
		Logo:        a.menu.Logo,
		User:        a.menu.User,
		Sidebar:     s.Sidebar.View(),
		AccountOpen: s.Account.IsOpen(),
		Account:     s.Account.Items(),
		Route:       route,
	}
	s.Unlock()

	if err := view.Write(w, status, view.Shell(page)); err != nil {
		logger.FromContext(r.Context()).Error("failed to render shell", "route", route, "error", err)
	}
}

func (a *App) toggleItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	label := r.PathValue("label")

	s.Lock()
	ok := s.Sidebar.Toggle(label)
	s.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no menu group %q", label))
		return
	}

	a.metrics.UIEvents.Increment(EventItemToggle)
	a.redirectBack(w, r)
}

func (a *App) selectAccountItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	s.Lock()
	ok := s.Account.Select(i)
	s.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such account item")
		return
	}

	a.metrics.UIEvents.Increment(EventAccountSelect)

	if a.menu.UserItems[i].Action == menu.ActionLogout {
		a.store.End(w, s.ID)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	a.redirectBack(w, r)
}

type changeResponse struct {
	Changed bool `json:"changed"`
}

func (a *App) viewport(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	mobile, err := strconv.ParseBool(r.PostFormValue("mobile"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid mobile flag")
		return
	}

	s.Lock()
	changed := s.Sidebar.Mobile() != mobile
	s.Sidebar.SetMobile(mobile)
	s.Unlock()

	if changed {
		a.metrics.UIEvents.Increment(EventViewport)
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed})
}

// pointer dispatches a pointer-down reported by the page to the session's
// outside-interaction listeners.
func (a *App) pointer(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var p dismiss.Pointer
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pointer event")
		return
	}

	s.Lock()
	drawer, account := s.Sidebar.DrawerOpen(), s.Account.IsOpen()
	s.Document.PointerDown(p)
	changed := drawer != s.Sidebar.DrawerOpen() || account != s.Account.IsOpen()
	s.Unlock()

	if changed {
		a.metrics.UIEvents.Increment(EventOutsideDismiss)
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed})
}

// redirectBack sends the browser to the local path carried by the "return"
// form field, or to the landing page.
func (a *App) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.PostFormValue("return")
	if !isLocalPath(target) {
		target = a.menu.Landing()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// observe logs every request and counts it by method and status code.
func (a *App) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		log := slog.Default().With("method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context(), log)))

		a.metrics.Requests.Increment(r.Method, strconv.Itoa(rec.status))
		log.Debug("request handled",
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func writeError(w http.ResponseWriter, status int, message string) {
	slog.Debug("handling error response",
		"status", status,
		"message", message,
	)
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
