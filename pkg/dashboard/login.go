package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mchmarny/dashd/pkg/form"
	"github.com/mchmarny/dashd/pkg/logger"
	"github.com/mchmarny/dashd/pkg/metric"
	"github.com/mchmarny/dashd/pkg/session"
	"github.com/mchmarny/dashd/pkg/view"
)

// LoginFailedBanner is shown when the authenticator rejects a submission.
const LoginFailedBanner = "Échec de la connexion. Vérifiez vos identifiants et réessayez."

// Field events accepted by POST /login/events.
const (
	EventChange = "change"
	EventBlur   = "blur"
)

type fieldEvent struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type fieldEventResponse struct {
	Errors map[form.Field]string `json:"errors"`
}

func (a *App) loginPage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if done, err := takePending(s); done {
		a.finishLogin(w, r, s, err)
		return
	}
	a.renderLogin(w, r, s, http.StatusOK, "")
}

func (a *App) loginSubmit(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	applyLogin(s.Login, r.PostForm)

	// The submission outlives this request when the authenticator is slow.
	ctx := context.WithoutCancel(r.Context())
	done, err := s.Login.Start(ctx, a.auth.Authenticate)

	var verr *form.ValidationError
	switch {
	case errors.Is(err, form.ErrSubmitting):
		a.metrics.Logins.Increment(metric.LoginBusy)
		a.renderLogin(w, r, s, http.StatusConflict, "")
		return
	case errors.As(err, &verr):
		a.metrics.Logins.Increment(metric.LoginInvalid)
		a.renderLogin(w, r, s, http.StatusUnprocessableEntity, "")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("login submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "error, see logs for details")
		return
	}

	// A new submission supersedes any parked outcome.
	s.Lock()
	s.Pending = nil
	s.Unlock()

	timer := time.NewTimer(a.loginWait)
	defer timer.Stop()

	select {
	case err := <-done:
		a.finishLogin(w, r, s, err)
	case <-timer.C:
		a.deferLogin(w, r, s, done)
	case <-r.Context().Done():
		a.deferLogin(w, r, s, done)
	}
}

// deferLogin parks a running submission on the session and renders the busy
// state. The page refreshes until the outcome is collected.
func (a *App) deferLogin(w http.ResponseWriter, r *http.Request, s *session.Session, done <-chan error) {
	s.Lock()
	s.Pending = done
	s.Unlock()

	a.metrics.Logins.Increment(metric.LoginPending)

	// Busy even if the submission completed meanwhile, so the refresh
	// collects the outcome.
	st := s.Login.State()
	st.Submitting = true
	a.writeLogin(w, r, http.StatusAccepted, view.LoginPage{Form: st, Refresh: time.Second})
}

// finishLogin handles the outcome of a completed submission.
func (a *App) finishLogin(w http.ResponseWriter, r *http.Request, s *session.Session, err error) {
	log := logger.FromContext(r.Context())

	if err != nil {
		a.metrics.Logins.Increment(metric.LoginRejected)
		log.Warn("login rejected", "error", err)
		a.renderLogin(w, r, s, http.StatusUnauthorized, LoginFailedBanner)
		return
	}

	a.metrics.Logins.Increment(metric.LoginAccepted)
	log.Info("login accepted")
	s.Login.Reset()
	http.Redirect(w, r, a.menu.Landing(), http.StatusSeeOther)
}

func (a *App) loginVisibility(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	applyLogin(s.Login, r.PostForm)
	s.Login.TogglePasswordVisibility()

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) loginEvent(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var ev fieldEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid field event")
		return
	}

	field := form.Field(ev.Field)
	switch field {
	case form.FieldEmail, form.FieldPassword, form.FieldRememberMe:
	default:
		writeError(w, http.StatusBadRequest, "unknown field")
		return
	}

	switch ev.Type {
	case EventChange:
		s.Login.Change(field, ev.Value)
	case EventBlur:
		s.Login.Blur(field)
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	writeJSON(w, http.StatusOK, fieldEventResponse{Errors: s.Login.VisibleErrors()})
}

func (a *App) renderLogin(w http.ResponseWriter, r *http.Request, s *session.Session, status int, banner string) {
	a.writeLogin(w, r, status, view.LoginPage{
		Form:    s.Login.State(),
		Banner:  banner,
		Refresh: time.Second,
	})
}

func (a *App) writeLogin(w http.ResponseWriter, r *http.Request, status int, page view.LoginPage) {
	if err := view.Write(w, status, view.Login(page)); err != nil {
		logger.FromContext(r.Context()).Error("failed to render login", "error", err)
	}
}

// takePending returns the outcome of a parked submission once it completed.
// done is false when nothing is parked or the submission is still running.
func takePending(s *session.Session) (done bool, err error) {
	s.Lock()
	defer s.Unlock()

	if s.Pending == nil {
		return false, nil
	}

	select {
	case err := <-s.Pending:
		s.Pending = nil
		return true, err
	default:
		return false, nil
	}
}

// applyLogin copies the posted fields into the form. Only fields whose value
// differs are changed so re-posting an untouched field keeps it pristine.
func applyLogin(l *form.Login, posted url.Values) {
	cur := l.Values()

	if v := posted.Get(string(form.FieldEmail)); v != cur.Email {
		l.Change(form.FieldEmail, v)
	}
	if v := posted.Get(string(form.FieldPassword)); v != cur.Password {
		l.Change(form.FieldPassword, v)
	}
	if checked := posted.Get(string(form.FieldRememberMe)) != ""; checked != cur.RememberMe {
		l.Change(form.FieldRememberMe, strconv.FormatBool(checked))
	}
}
