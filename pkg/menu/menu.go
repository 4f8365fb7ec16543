package menu

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Menu represents the static navigation table of the dashboard.
type Menu struct {
	// Title is the heading shown when no menu entry matches the route.
	Title string `json:"title" yaml:"title"`

	// Logo is the URL of the image displayed at the top of the sidebar.
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty"`

	// User is the account displayed in the header dropdown.
	User User `json:"user" yaml:"user"`

	// Items is the ordered list of sidebar entries.
	Items []Item `json:"items,omitempty" yaml:"items,omitempty"`

	// UserItems is the ordered list of account dropdown entries.
	UserItems []UserItem `json:"user_items,omitempty" yaml:"user_items,omitempty"`
}

// Walk visits every navigable path of the menu in display order.
// Parent items have no path of their own so only their sub-items are visited.
func (m *Menu) Walk(fn func(label, path string)) {
	for i := range m.Items {
		walkItem(&m.Items[i], fn)
	}
}

func walkItem(item *Item, fn func(label, path string)) {
	if item.Path != "" {
		fn(item.Label, item.Path)
	}

	for _, s := range item.SubItems {
		fn(s.Label, s.Path)
	}
}

// Lookup returns the label of the entry whose path equals route.
func (m *Menu) Lookup(route string) (string, bool) {
	var (
		label string
		found bool
	)

	m.Walk(func(l, p string) {
		if !found && p == route {
			label, found = l, true
		}
	})

	return label, found
}

// Landing returns the first navigable path, used when the root is requested.
func (m *Menu) Landing() string {
	landing := "/"
	m.Walk(func(_, p string) {
		if landing == "/" {
			landing = p
		}
	})
	return landing
}

// Handler returns an HTTP handler that responds with the menu table as JSON.
func (m *Menu) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(m); err != nil {
			slog.Error("failed to encode menu", "error", err)
			return
		}
	})
}

// Default returns the navigation table of the dashboard.
func Default() *Menu {
	return &Menu{
		Title: "Tableau de bord",
		Logo:  "https://res.cloudinary.com/dbpoyo4gw/image/upload/v1749549435/logo_gate_group_pktaw2.jpg",
		User: User{
			Name:   "Sarah Johnson",
			Email:  "sarah@groupegate.com",
			Role:   "Administrateur",
			Avatar: "https://randomuser.me/api/portraits/women/44.jpg",
		},
		Items: []Item{
			{
				Label: "Dashboard",
				Icon:  Icon{Name: "home", Color: "text-blue-400"},
				Path:  "/dashboard",
			},
			{
				Label: "Équipe",
				Icon:  Icon{Name: "users", Color: "text-green-400"},
				Path:  "/team",
			},
			{
				Label: "Projets",
				Icon:  Icon{Name: "folder", Color: "text-purple-400"},
				SubItems: []SubItem{
					{Label: "Tous les projets", Path: "/projects"},
					{Label: "En cours", Path: "/projects/current"},
					{Label: "Terminés", Path: "/projects/completed"},
				},
			},
			{
				Label: "Documents",
				Icon:  Icon{Name: "file-text", Color: "text-red-400"},
				SubItems: []SubItem{
					{Label: "Contrats", Path: "/documents/contracts"},
					{Label: "Factures", Path: "/documents/invoices"},
				},
			},
			{
				Label: "Base de données",
				Icon:  Icon{Name: "database", Color: "text-cyan-400"},
				SubItems: []SubItem{
					{Label: "Clients", Path: "/database/clients"},
					{Label: "Fournisseurs", Path: "/database/suppliers"},
				},
			},
			{
				Label: "Paramètres",
				Icon:  Icon{Name: "settings", Color: "text-gray-400"},
				Path:  "/settings",
			},
		},
		UserItems: []UserItem{
			{Label: "Mon profil", Icon: Icon{Name: "user", Color: "text-blue-400"}},
			{Label: "Aide", Icon: Icon{Name: "help-circle", Color: "text-green-400"}},
			{Label: "Déconnexion", Icon: Icon{Name: "log-out", Color: "text-red-400"}, Action: ActionLogout},
		},
	}
}

// ActionLogout is the action name bound to the sign-out entry.
const ActionLogout = "logout"
