package view

import (
	"net/url"
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/mchmarny/dashd/pkg/assets"
	"github.com/mchmarny/dashd/pkg/menu"
	"github.com/mchmarny/dashd/pkg/nav"
)

// Shell page labels.
const (
	WelcomeTitle = "Bienvenue sur votre tableau de bord"
	WelcomeText  = "Sélectionnez une rubrique dans le menu pour commencer."
	SearchLabel  = "Rechercher..."
)

// ShellPage is the data rendered around every dashboard route.
type ShellPage struct {
	// Title is the heading of the current route.
	Title string
	Logo  string
	User  menu.User

	Sidebar nav.SidebarView

	AccountOpen bool
	Account     []nav.UserMenuItem

	// Route is the current path. Controls post it back so the handler can
	// redirect to the same page.
	Route string
}

// Shell renders the dashboard layout: sidebar, header and content area.
func Shell(p ShellPage) g.Node {
	return Document(p.Title, nil,
		html.Class("bg-gray-100"),
		g.Attr("data-mobile", strconv.FormatBool(p.Sidebar.Mobile)),
		html.Div(
			html.Class("flex h-screen overflow-hidden"),
			g.If(p.Sidebar.Mobile && p.Sidebar.DrawerOpen, html.Div(
				html.Class("fixed inset-0 z-20 bg-black bg-opacity-50 md:hidden"),
				g.Attr("aria-hidden", "true"),
			)),
			sidebar(p),
			html.Div(
				html.Class("flex flex-col flex-1 overflow-hidden"),
				header(p),
				html.Main(
					html.Class("flex-1 overflow-y-auto p-6"),
					html.Div(
						html.Class("bg-white rounded-xl shadow p-6"),
						html.H2(html.Class("text-xl font-semibold text-gray-800 mb-2"), g.Text(WelcomeTitle)),
						html.P(html.Class("text-gray-600"), g.Text(WelcomeText)),
					),
				),
			),
		),
		html.Script(g.Raw(script)),
	)
}

func sidebar(p ShellPage) g.Node {
	v := p.Sidebar

	width := "w-64"
	if v.Collapsed {
		width = "w-20"
	}
	position := "md:translate-x-0"
	if v.DrawerOpen {
		position += " translate-x-0"
	} else {
		position += " -translate-x-full"
	}

	return html.Aside(
		html.ID(nav.SidebarBoundary),
		html.Class("fixed inset-y-0 left-0 z-30 flex flex-col bg-indigo-800 transition-all duration-300 md:relative "+width+" "+position),
		html.Div(
			html.Class("flex items-center justify-between h-16 px-4 bg-indigo-900"),
			g.If(p.Logo != "", html.Img(
				html.Src(assets.ProxyURL(p.Logo)),
				html.Alt("Logo"),
				html.Class("h-8 w-auto"),
			)),
			postButton("/ui/sidebar/collapse", p.Route, "hidden md:block text-indigo-200 hover:text-white", collapseLabel(v.Collapsed),
				icon(collapseIcon(v.Collapsed), "w-5 h-5"),
			),
			postButton("/ui/sidebar/drawer/close", p.Route, "md:hidden text-indigo-200 hover:text-white", "Fermer le menu",
				icon("x", "w-5 h-5"),
			),
		),
		html.Nav(
			html.Class("flex-1 overflow-y-auto px-2 py-4 space-y-1"),
			g.Map(v.Items, func(item nav.ItemView) g.Node {
				return sidebarItem(item, p.Route)
			}),
		),
	)
}

func sidebarItem(item nav.ItemView, route string) g.Node {
	if !item.Parent {
		return html.A(
			html.Href(item.Path),
			html.Class(itemClass(item.Active)),
			g.If(item.Active, g.Attr("aria-current", "page")),
			g.If(!item.ShowLabel, g.Attr("title", item.Label)),
			menuIcon(item.Icon, item.Active),
			g.If(item.ShowLabel, html.Span(html.Class("ml-3"), g.Text(item.Label))),
		)
	}

	return html.Div(
		postButton("/ui/sidebar/items/"+url.PathEscape(item.Label)+"/toggle", route,
			"w-full "+itemClass(item.Active), "",
			g.Attr("aria-expanded", strconv.FormatBool(item.Expanded)),
			menuIcon(item.Icon, item.Active),
			g.If(item.ShowLabel, html.Span(html.Class("ml-3 flex-1 text-left"), g.Text(item.Label))),
			g.If(item.ShowChevron, icon(chevron(item.Expanded), "w-4 h-4")),
		),
		g.If(len(item.SubItems) > 0, html.Div(
			html.Class("mt-1 ml-8 space-y-1"),
			g.Map(item.SubItems, func(sub nav.SubItemView) g.Node {
				return html.A(
					html.Href(sub.Path),
					html.Class(subItemClass(sub.Active)),
					g.If(sub.Active, g.Attr("aria-current", "page")),
					g.Text(sub.Label),
				)
			}),
		)),
	)
}

func header(p ShellPage) g.Node {
	return html.Header(
		html.Class("flex items-center justify-between h-16 px-6 bg-white border-b border-gray-200"),
		html.Div(
			html.Class("flex items-center"),
			postButton("/ui/sidebar/drawer/open", p.Route, "md:hidden mr-4 text-gray-500 hover:text-gray-700", "Ouvrir le menu",
				icon("menu", "w-6 h-6"),
			),
			html.H1(html.Class("text-xl font-semibold text-gray-800"), g.Text(p.Title)),
		),
		html.Div(
			html.Class("flex items-center space-x-4"),
			html.Div(
				html.Class("relative hidden sm:block"),
				html.Input(
					g.Attr("type", "search"),
					g.Attr("placeholder", SearchLabel),
					g.Attr("aria-label", SearchLabel),
					html.Class("pl-10 pr-4 py-2 border border-gray-300 rounded-lg text-sm focus:outline-none focus:ring-2 focus:ring-indigo-500"),
				),
				html.Div(
					html.Class("absolute inset-y-0 left-0 pl-3 flex items-center pointer-events-none"),
					icon("search", "w-4 h-4 text-gray-400"),
				),
			),
			html.Button(
				g.Attr("type", "button"),
				g.Attr("aria-label", "Notifications"),
				html.Class("relative text-gray-500 hover:text-gray-700"),
				icon("bell", "w-6 h-6"),
			),
			account(p),
		),
	)
}

func account(p ShellPage) g.Node {
	return html.Div(
		html.ID(nav.AccountBoundary),
		html.Class("relative"),
		postButton("/ui/account/toggle", p.Route, "flex items-center space-x-2 focus:outline-none", "Compte",
			g.Attr("aria-haspopup", "menu"),
			g.Attr("aria-expanded", strconv.FormatBool(p.AccountOpen)),
			g.If(p.User.Avatar != "", html.Img(
				html.Src(assets.ProxyURL(p.User.Avatar)),
				html.Alt(p.User.Name),
				html.Class("w-8 h-8 rounded-full"),
			)),
			html.Span(html.Class("hidden md:block text-sm font-medium text-gray-700"), g.Text(p.User.Name)),
			icon(chevron(p.AccountOpen), "w-4 h-4 text-gray-500"),
		),
		g.If(p.AccountOpen, html.Div(
			g.Attr("role", "menu"),
			html.Class("absolute right-0 z-40 mt-2 w-56 bg-white rounded-lg shadow-lg py-1"),
			html.Div(
				html.Class("px-4 py-3 border-b border-gray-100"),
				html.P(html.Class("text-sm font-medium text-gray-900"), g.Text(p.User.Name)),
				html.P(html.Class("text-xs text-gray-500 truncate"), g.Text(p.User.Email)),
			),
			g.Group(accountItems(p)),
		)),
	)
}

func accountItems(p ShellPage) []g.Node {
	nodes := make([]g.Node, 0, len(p.Account))
	for i, item := range p.Account {
		nodes = append(nodes, postButton("/ui/account/items/"+strconv.Itoa(i), p.Route,
			"flex w-full items-center px-4 py-2 text-sm text-gray-700 hover:bg-gray-100", "",
			g.Attr("role", "menuitem"),
			menuIcon(item.Icon, false),
			html.Span(html.Class("ml-3"), g.Text(item.Label)),
		))
	}
	return nodes
}

func itemClass(active bool) string {
	base := "flex items-center px-3 py-2 rounded-lg text-sm font-medium transition-colors "
	if active {
		return base + "bg-indigo-700 text-white"
	}
	return base + "text-indigo-200 hover:bg-indigo-700 hover:text-white"
}

func subItemClass(active bool) string {
	base := "block px-3 py-2 rounded-lg text-sm "
	if active {
		return base + "bg-indigo-600 text-white"
	}
	return base + "text-indigo-300 hover:bg-indigo-700 hover:text-white"
}

func chevron(open bool) string {
	if open {
		return "chevron-down"
	}
	return "chevron-right"
}

func collapseIcon(collapsed bool) string {
	if collapsed {
		return "chevrons-right"
	}
	return "chevrons-left"
}

func collapseLabel(collapsed bool) string {
	if collapsed {
		return "Déplier le menu"
	}
	return "Replier le menu"
}
