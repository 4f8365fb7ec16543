// Package nav holds the interaction state of the navigation shell: the
// sidebar with its collapsible groups and mobile drawer, and the account
// dropdown in the header. Highlighting is derived from the menu table and the
// current route every time a view is built; only the flags the user controls
// are stored.
package nav

import (
	"github.com/mchmarny/dashd/pkg/dismiss"
	"github.com/mchmarny/dashd/pkg/menu"
)

// SidebarBoundary is the element id of the sidebar container.
const SidebarBoundary = "sidebar"

// Sidebar is the state of the navigation sidebar for one viewer.
// It is not safe for concurrent use.
type Sidebar struct {
	menu       *menu.Menu
	route      string
	collapsed  bool
	mobile     bool
	drawerOpen bool
	expanded   map[string]bool
	matched    map[string]bool
	drawer     *dismiss.Guard
}

// NewSidebar returns the sidebar state for m as first rendered on route.
// Parents containing the route start expanded.
func NewSidebar(m *menu.Menu, doc *dismiss.Document, route string) *Sidebar {
	s := &Sidebar{
		menu:     m,
		expanded: make(map[string]bool),
		matched:  make(map[string]bool),
	}
	s.drawer = dismiss.NewGuard(doc, dismiss.Element(SidebarBoundary), s.CloseDrawer)
	s.Navigate(route)
	return s
}

// Navigate records the route being displayed. A parent is expanded when the
// route starts matching one of its sub-items; it is never collapsed when the
// route stops matching. Re-rendering the same route changes nothing, so a
// group the user folded stays folded.
func (s *Sidebar) Navigate(route string) {
	s.route = route
	for _, item := range s.menu.Items {
		if !item.HasSubItems() {
			continue
		}
		active := item.HasActiveChild(route)
		if active && !s.matched[item.Label] {
			s.expanded[item.Label] = true
		}
		s.matched[item.Label] = active
	}
}

// Route returns the current route.
func (s *Sidebar) Route() string {
	return s.route
}

// Toggle flips the expanded flag of the parent labelled label and reports
// whether such a parent exists. Other items are left untouched.
func (s *Sidebar) Toggle(label string) bool {
	for _, item := range s.menu.Items {
		if item.Label == label && item.HasSubItems() {
			s.expanded[label] = !s.expanded[label]
			return true
		}
	}
	return false
}

// Expanded reports whether the parent labelled label is expanded.
func (s *Sidebar) Expanded(label string) bool {
	return s.expanded[label]
}

// ToggleCollapsed flips the collapsed flag. The control is not available
// on small screens, so the call is ignored in mobile mode.
func (s *Sidebar) ToggleCollapsed() {
	if s.mobile {
		return
	}
	s.collapsed = !s.collapsed
}

// Collapsed reports the stored collapsed flag.
func (s *Sidebar) Collapsed() bool {
	return s.collapsed
}

// SetMobile records whether the viewport is below the breakpoint. Leaving
// mobile mode closes the drawer.
func (s *Sidebar) SetMobile(mobile bool) {
	s.mobile = mobile
	if !mobile && s.drawerOpen {
		s.CloseDrawer()
	}
}

// Mobile reports whether the viewport is below the breakpoint.
func (s *Sidebar) Mobile() bool {
	return s.mobile
}

// OpenDrawer opens the off-canvas drawer and starts watching for
// interactions outside of it.
func (s *Sidebar) OpenDrawer() {
	s.drawerOpen = true
	s.drawer.Arm()
}

// CloseDrawer closes the drawer and stops watching.
func (s *Sidebar) CloseDrawer() {
	s.drawerOpen = false
	s.drawer.Disarm()
}

// DrawerOpen reports whether the drawer is open.
func (s *Sidebar) DrawerOpen() bool {
	return s.drawerOpen
}

// Release stops watching for outside interactions.
func (s *Sidebar) Release() {
	s.drawer.Disarm()
}

// SidebarView is the render-ready state of the sidebar.
type SidebarView struct {
	// Collapsed is true when the sidebar renders in its narrow, icon-only form.
	Collapsed bool

	// Mobile is true below the breakpoint.
	Mobile bool

	// DrawerOpen is true when the mobile drawer is visible.
	DrawerOpen bool

	Items []ItemView
}

// ItemView is a top-level entry ready to render.
type ItemView struct {
	Label string
	Icon  menu.Icon

	// Path is empty for parents.
	Path string

	Parent      bool
	Active      bool
	Expanded    bool
	ShowLabel   bool
	ShowChevron bool

	// SubItems is empty unless the list is visible.
	SubItems []SubItemView
}

// SubItemView is a nested entry ready to render.
type SubItemView struct {
	Label  string
	Path   string
	Active bool
}

// View derives the render state from the menu table, the current route and
// the stored flags.
func (s *Sidebar) View() SidebarView {
	collapsed := s.collapsed && !s.mobile

	v := SidebarView{
		Collapsed:  collapsed,
		Mobile:     s.mobile,
		DrawerOpen: s.drawerOpen,
		Items:      make([]ItemView, 0, len(s.menu.Items)),
	}

	for _, item := range s.menu.Items {
		iv := ItemView{
			Label:     item.Label,
			Icon:      item.Icon,
			Path:      item.Path,
			Parent:    item.HasSubItems(),
			Active:    item.IsActive(s.route),
			ShowLabel: !collapsed,
		}

		if iv.Parent {
			iv.Expanded = s.expanded[item.Label]
			iv.ShowChevron = !collapsed

			if iv.Expanded && !collapsed {
				iv.SubItems = make([]SubItemView, 0, len(item.SubItems))
				for _, sub := range item.SubItems {
					iv.SubItems = append(iv.SubItems, SubItemView{
						Label:  sub.Label,
						Path:   sub.Path,
						Active: sub.Path == s.route,
					})
				}
			}
		}

		v.Items = append(v.Items, iv)
	}

	return v
}
