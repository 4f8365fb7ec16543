package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/dashd/pkg/dismiss"
	"github.com/mchmarny/dashd/pkg/menu"
)

const (
	projects  = "Projets"
	documents = "Documents"
	database  = "Base de données"
)

func newSidebar(t *testing.T, route string) (*Sidebar, *dismiss.Document) {
	t.Helper()
	doc := dismiss.NewDocument()
	return NewSidebar(menu.Default(), doc, route), doc
}

func item(t *testing.T, v SidebarView, label string) ItemView {
	t.Helper()
	for _, i := range v.Items {
		if i.Label == label {
			return i
		}
	}
	require.Failf(t, "item not found", "label %q", label)
	return ItemView{}
}

func TestParentActiveOnlyOnExactChildMatch(t *testing.T) {
	routes := []string{
		"/dashboard", "/team", "/projects", "/projects/current", "/projects/completed",
		"/documents/contracts", "/documents/invoices", "/database/clients",
		"/database/suppliers", "/settings", "/projects/", "/projects/current/1", "/unknown", "",
	}

	for _, route := range routes {
		t.Run(route, func(t *testing.T) {
			s, _ := newSidebar(t, route)
			for _, iv := range s.View().Items {
				var want bool
				for _, mi := range menu.Default().Items {
					if mi.Label != iv.Label {
						continue
					}
					if mi.HasSubItems() {
						for _, sub := range mi.SubItems {
							want = want || sub.Path == route
						}
					} else {
						want = mi.Path == route
					}
				}
				assert.Equal(t, want, iv.Active, "item %q on %q", iv.Label, route)
			}
		})
	}
}

func TestUnmatchedRouteHasNoHighlight(t *testing.T) {
	s, _ := newSidebar(t, "/nowhere")

	for _, iv := range s.View().Items {
		assert.False(t, iv.Active, iv.Label)
		assert.False(t, iv.Expanded, iv.Label)
	}
}

func TestAutoExpandOnMount(t *testing.T) {
	s, _ := newSidebar(t, "/documents/invoices")
	v := s.View()

	docs := item(t, v, documents)
	assert.True(t, docs.Expanded)
	require.Len(t, docs.SubItems, 2)
	assert.False(t, docs.SubItems[0].Active)
	assert.True(t, docs.SubItems[1].Active)

	assert.False(t, item(t, v, projects).Expanded)
	assert.Empty(t, item(t, v, projects).SubItems)
}

func TestAutoExpandIsSticky(t *testing.T) {
	s, _ := newSidebar(t, "/projects/current")
	require.True(t, s.Expanded(projects))

	s.Navigate("/projects/current")
	assert.True(t, s.Expanded(projects), "unchanged route keeps the group open")

	s.Navigate("/database/clients")
	assert.True(t, s.Expanded(database), "new parent expands")
	assert.True(t, s.Expanded(projects), "previous parent does not auto-collapse")

	v := s.View()
	assert.False(t, item(t, v, projects).Active)
	assert.True(t, item(t, v, database).Active)
}

func TestFoldedGroupStaysFoldedOnRerender(t *testing.T) {
	s, _ := newSidebar(t, "/projects")
	require.True(t, s.Toggle(projects))
	require.False(t, s.Expanded(projects))

	s.Navigate("/projects")
	assert.False(t, s.Expanded(projects))

	s.Navigate("/settings")
	s.Navigate("/projects/completed")
	assert.True(t, s.Expanded(projects), "matching again after leaving re-expands")
}

func TestToggleAffectsOnlyItsItem(t *testing.T) {
	s, _ := newSidebar(t, "/dashboard")

	before := map[string]bool{}
	for _, iv := range s.View().Items {
		before[iv.Label] = iv.Expanded
	}

	require.True(t, s.Toggle(documents))

	for _, iv := range s.View().Items {
		if iv.Label == documents {
			assert.Equal(t, !before[documents], iv.Expanded)
			continue
		}
		assert.Equal(t, before[iv.Label], iv.Expanded, iv.Label)
	}

	require.True(t, s.Toggle(projects))
	assert.True(t, s.Expanded(documents), "several parents may be open")
	assert.True(t, s.Expanded(projects))
}

func TestToggleUnknownOrLeaf(t *testing.T) {
	s, _ := newSidebar(t, "/dashboard")

	assert.False(t, s.Toggle("Dashboard"))
	assert.False(t, s.Toggle("Missing"))
	assert.False(t, s.Expanded("Dashboard"))
}

func TestCollapsedHidesLabelsAndSubItems(t *testing.T) {
	s, _ := newSidebar(t, "/projects/current")
	s.Toggle(documents)
	s.Toggle(database)
	s.ToggleCollapsed()

	v := s.View()
	assert.True(t, v.Collapsed)
	for _, iv := range v.Items {
		assert.False(t, iv.ShowLabel, iv.Label)
		assert.False(t, iv.ShowChevron, iv.Label)
		assert.Empty(t, iv.SubItems, iv.Label)
		assert.NotEmpty(t, iv.Icon.Name, iv.Label)
	}
	assert.True(t, item(t, v, projects).Expanded, "expanded flag survives collapse")
	assert.True(t, item(t, v, projects).Active)

	s.ToggleCollapsed()
	v = s.View()
	assert.False(t, v.Collapsed)
	assert.Len(t, item(t, v, projects).SubItems, 3)
	assert.True(t, item(t, v, "Dashboard").ShowLabel)
	assert.False(t, item(t, v, "Dashboard").ShowChevron)
}

func TestCollapseIgnoredInMobileMode(t *testing.T) {
	s, _ := newSidebar(t, "/projects")
	s.ToggleCollapsed()
	require.True(t, s.Collapsed())

	s.SetMobile(true)
	v := s.View()
	assert.False(t, v.Collapsed, "drawer is always full width")
	assert.True(t, item(t, v, projects).ShowLabel)
	assert.Len(t, item(t, v, projects).SubItems, 3)

	s.ToggleCollapsed()
	assert.True(t, s.Collapsed(), "toggle is a no-op in mobile mode")
}

func TestDrawerClosesOnOutsidePointer(t *testing.T) {
	s, doc := newSidebar(t, "/dashboard")
	s.SetMobile(true)
	assert.Equal(t, 0, doc.Listeners())

	s.OpenDrawer()
	assert.True(t, s.View().DrawerOpen)
	assert.Equal(t, 1, doc.Listeners())

	doc.PointerDown(dismiss.Pointer{Targets: []string{"nav-link", SidebarBoundary}})
	assert.True(t, s.DrawerOpen())

	doc.PointerDown(dismiss.Pointer{Targets: []string{"content"}})
	assert.False(t, s.DrawerOpen())
	assert.Equal(t, 0, doc.Listeners())
}

func TestDrawerCloseButtonAndRelease(t *testing.T) {
	s, doc := newSidebar(t, "/dashboard")

	s.OpenDrawer()
	s.CloseDrawer()
	assert.False(t, s.DrawerOpen())
	assert.Equal(t, 0, doc.Listeners())

	s.OpenDrawer()
	s.Release()
	assert.Equal(t, 0, doc.Listeners())
}

func TestLeavingMobileClosesDrawer(t *testing.T) {
	s, doc := newSidebar(t, "/dashboard")
	s.SetMobile(true)
	s.OpenDrawer()

	s.SetMobile(false)
	assert.False(t, s.DrawerOpen())
	assert.Equal(t, 0, doc.Listeners())
}

func TestDrawerAndCollapseAreOrthogonal(t *testing.T) {
	s, _ := newSidebar(t, "/dashboard")
	s.ToggleCollapsed()
	s.OpenDrawer()

	assert.True(t, s.Collapsed())
	assert.True(t, s.DrawerOpen())
}

func TestAccountMenuToggleAndSelect(t *testing.T) {
	doc := dismiss.NewDocument()
	called := 0
	a := NewAccountMenu(doc, []UserMenuItem{
		{Label: "Mon profil"},
		{Label: "Déconnexion", Action: func() { called++ }},
	})

	assert.False(t, a.IsOpen())
	a.Toggle()
	assert.True(t, a.IsOpen())
	a.Toggle()
	assert.False(t, a.IsOpen())

	a.Open()
	assert.True(t, a.Select(1))
	assert.Equal(t, 1, called)
	assert.False(t, a.IsOpen())

	a.Open()
	assert.True(t, a.Select(0), "entries without action still close the menu")
	assert.False(t, a.IsOpen())

	assert.False(t, a.Select(5))
	assert.False(t, a.Select(-1))
	assert.Equal(t, 1, called)
	assert.Len(t, a.Items(), 2)
}

func TestAccountMenuOutsidePointer(t *testing.T) {
	doc := dismiss.NewDocument()
	a := NewAccountMenu(doc, nil)

	doc.PointerDown(dismiss.Pointer{Targets: []string{"main"}})
	assert.False(t, a.IsOpen(), "outside click on a closed menu is a no-op")
	assert.Equal(t, 0, doc.Listeners())

	a.Open()
	doc.PointerDown(dismiss.Pointer{Targets: []string{"item-0", AccountBoundary}})
	assert.True(t, a.IsOpen(), "click inside keeps it open")

	doc.PointerDown(dismiss.Pointer{Targets: []string{"main"}})
	assert.False(t, a.IsOpen())
	assert.Equal(t, 0, doc.Listeners())

	a.Open()
	a.Release()
	assert.Equal(t, 0, doc.Listeners())
}
