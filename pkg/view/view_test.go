package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"

	"github.com/mchmarny/dashd/pkg/dismiss"
	"github.com/mchmarny/dashd/pkg/form"
	"github.com/mchmarny/dashd/pkg/menu"
	"github.com/mchmarny/dashd/pkg/nav"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestLoginPristine(t *testing.T) {
	out := render(t, Login(LoginPage{Form: form.State{Errors: map[form.Field]string{}}}))

	assert.Contains(t, out, `<html lang="fr">`)
	assert.Contains(t, out, LoginTitle)
	assert.Contains(t, out, SubmitLabel)
	assert.Contains(t, out, `type="password"`)
	assert.NotContains(t, out, "-error")
	assert.NotContains(t, out, `http-equiv="refresh"`)
	assert.NotContains(t, out, `role="alert"`)
	assert.NotContains(t, out, `id="login-submit" disabled`)
}

func TestLoginErrorsAndBanner(t *testing.T) {
	out := render(t, Login(LoginPage{
		Form: form.State{
			Email:        "not-an-email",
			ShowPassword: true,
			Errors: map[form.Field]string{
				form.FieldEmail: "Adresse email invalide",
			},
		},
		Banner: "Identifiants refusés",
	}))

	assert.Contains(t, out, `id="email-error"`)
	assert.Contains(t, out, "Adresse email invalide")
	assert.NotContains(t, out, `id="password-error"`)
	assert.Contains(t, out, `value="not-an-email"`)
	assert.Contains(t, out, `type="text"`)
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "Identifiants refusés")
}

func TestLoginSubmitting(t *testing.T) {
	out := render(t, Login(LoginPage{
		Form:    form.State{Submitting: true},
		Refresh: 2 * time.Second,
	}))

	assert.Contains(t, out, SubmittingLabel)
	assert.Contains(t, out, `aria-busy="true"`)
	assert.Contains(t, out, `id="login-submit" disabled`)
	assert.Contains(t, out, `content="2; url=/login"`)
}

func testShell(t *testing.T, route string, setup func(*nav.Sidebar)) string {
	t.Helper()
	m := menu.Default()
	doc := dismiss.NewDocument()
	sb := nav.NewSidebar(m, doc, route)
	if setup != nil {
		setup(sb)
	}
	return render(t, Shell(ShellPage{
		Title:   "En cours",
		Logo:    m.Logo,
		User:    m.User,
		Sidebar: sb.View(),
		Route:   route,
	}))
}

func TestShellHighlightsActiveRoute(t *testing.T) {
	out := testShell(t, "/projects/current", nil)

	assert.Contains(t, out, `id="sidebar"`)
	assert.Contains(t, out, `id="account-menu"`)
	assert.Contains(t, out, `href="/projects/current"`)
	assert.Contains(t, out, `aria-current="page"`)
	assert.Contains(t, out, `aria-expanded="true"`)
	assert.Contains(t, out, "w-64")
	assert.Contains(t, out, "/_image?url=")
	assert.Contains(t, out, WelcomeTitle)
}

func TestShellCollapsedHidesLabels(t *testing.T) {
	out := testShell(t, "/projects/current", func(s *nav.Sidebar) { s.ToggleCollapsed() })

	assert.Contains(t, out, "w-20")
	assert.NotContains(t, out, `href="/projects/current"`)
	assert.NotContains(t, out, "chevron-down")
}

func TestShellAccountDropdown(t *testing.T) {
	m := menu.Default()
	items := []nav.UserMenuItem{{Label: "Profil"}, {Label: "Déconnexion"}}

	closed := render(t, Shell(ShellPage{User: m.User, Account: items, Route: "/"}))
	assert.NotContains(t, closed, `role="menu"`)

	open := render(t, Shell(ShellPage{User: m.User, Account: items, AccountOpen: true, Route: "/"}))
	assert.Contains(t, open, `role="menu"`)
	assert.Contains(t, open, m.User.Email)
	assert.Contains(t, open, `action="/ui/account/items/1"`)
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Write(rec, http.StatusUnprocessableEntity, g.Text("x")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "x", rec.Body.String())
}
