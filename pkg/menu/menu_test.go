package menu

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIsActive(t *testing.T) {
	m := Default()
	projects := m.Items[2]
	require.True(t, projects.HasSubItems())

	tests := []struct {
		name  string
		item  Item
		route string
		want  bool
	}{
		{"leaf exact", m.Items[0], "/dashboard", true},
		{"leaf prefix is not a match", m.Items[0], "/dashboard/extra", false},
		{"leaf other route", m.Items[0], "/team", false},
		{"parent with matching child", projects, "/projects/current", true},
		{"parent with first child", projects, "/projects", true},
		{"parent partial match", projects, "/projects/curr", false},
		{"parent nested beyond child", projects, "/projects/current/42", false},
		{"parent unrelated route", projects, "/settings", false},
		{"empty route", m.Items[0], "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.IsActive(tt.route))
		})
	}
}

func TestWalkVisitsPathsInOrder(t *testing.T) {
	var paths []string
	Default().Walk(func(_, p string) { paths = append(paths, p) })

	assert.Equal(t, []string{
		"/dashboard",
		"/team",
		"/projects",
		"/projects/current",
		"/projects/completed",
		"/documents/contracts",
		"/documents/invoices",
		"/database/clients",
		"/database/suppliers",
		"/settings",
	}, paths)
}

func TestLookupAndLanding(t *testing.T) {
	m := Default()

	label, ok := m.Lookup("/documents/invoices")
	assert.True(t, ok)
	assert.Equal(t, "Factures", label)

	_, ok = m.Lookup("/nowhere")
	assert.False(t, ok)

	assert.Equal(t, "/dashboard", m.Landing())
	assert.Equal(t, "/", (&Menu{}).Landing())
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestParse(t *testing.T) {
	data := []byte(`
title: Admin
user:
  name: Jo
  email: jo@example.com
items:
  - label: Home
    icon: {name: home, color: text-blue-400}
    path: /home
  - label: Reports
    icon: {name: folder}
    items:
      - {label: Weekly, path: /reports/weekly}
user_items:
  - label: Logout
    icon: {name: log-out}
    action: logout
`)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Admin", m.Title)
	require.Len(t, m.Items, 2)
	assert.Equal(t, "text-blue-400", m.Items[0].Icon.Color)
	assert.True(t, m.Items[1].HasSubItems())
	assert.Equal(t, ActionLogout, m.UserItems[0].Action)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := map[string]string{
		"both path and sub-items": `
items:
  - label: Mixed
    path: /mixed
    items: [{label: A, path: /a}]
`,
		"neither path nor sub-items": `
items:
  - label: Empty
`,
		"relative path": `
items:
  - label: Rel
    path: rel
`,
		"duplicate label": `
items:
  - {label: A, path: /a}
  - {label: A, path: /b}
`,
		"not yaml": `items: [`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("items:\n  - label: X\n    path: /x\n    items: [{label: A, path: /a}]\n"))
	assert.ErrorIs(t, err, ErrInvalidMenu)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - {label: A, path: /a}\n"), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/a", m.Landing())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Default().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/menu", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got Menu
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got.Items, 6)
	assert.Equal(t, "Sarah Johnson", got.User.Name)
}
