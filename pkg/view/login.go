package view

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/mchmarny/dashd/pkg/form"
)

// Login page labels.
const (
	LoginTitle      = "Connexion"
	LoginSubtitle   = "Accédez à votre espace sécurisé"
	SubmitLabel     = "Se connecter"
	SubmittingLabel = "Connexion en cours..."
)

// LoginPage is the data rendered on the login page.
type LoginPage struct {
	Form form.State

	// Banner is an error reported by the authentication collaborator.
	Banner string

	// Refresh reloads the page after the given delay while a submission is pending.
	Refresh time.Duration
}

// Login renders the login page.
func Login(p LoginPage) g.Node {
	var head []g.Node
	if p.Form.Submitting && p.Refresh > 0 {
		head = append(head, html.Meta(
			g.Attr("http-equiv", "refresh"),
			g.Attr("content", fmt.Sprintf("%d; url=/login", max(1, int(p.Refresh.Seconds())))),
		))
	}

	return Document(LoginTitle, head,
		html.Class("min-h-screen bg-gray-50 flex items-center justify-center"),
		html.Div(
			html.Class("w-full max-w-md mx-auto"),
			html.Div(
				html.Class("bg-white rounded-xl shadow-lg overflow-hidden"),
				html.Div(
					html.Class("bg-gradient-to-r from-blue-600 to-blue-800 py-6 px-8"),
					html.Div(
						html.Class("flex items-center justify-between"),
						html.H1(html.Class("text-2xl font-bold text-white"), g.Text(LoginTitle)),
						icon("fingerprint", "h-8 w-8 text-blue-200"),
					),
					html.P(html.Class("mt-1 text-blue-100"), g.Text(LoginSubtitle)),
				),
				loginForm(p),
			),
		),
	)
}

func loginForm(p LoginPage) g.Node {
	s := p.Form

	return html.Form(
		g.Attr("method", "post"),
		g.Attr("action", "/login"),
		g.Attr("novalidate"),
		html.Class("p-8 space-y-6"),

		g.If(p.Banner != "", html.Div(
			html.Class("rounded-lg bg-red-50 p-3 text-sm text-red-700"),
			g.Attr("role", "alert"),
			g.Text(p.Banner),
		)),

		field(s, form.FieldEmail, "Adresse email", "mail",
			html.Input(
				html.ID(string(form.FieldEmail)),
				g.Attr("name", string(form.FieldEmail)),
				g.Attr("type", "email"),
				g.Attr("autocomplete", "email"),
				g.Attr("value", s.Email),
				g.Attr("placeholder", "votre@email.com"),
				html.Class(inputClass(s.Errors[form.FieldEmail] != "")),
			),
		),

		field(s, form.FieldPassword, "Mot de passe", "lock",
			html.Input(
				html.ID(string(form.FieldPassword)),
				g.Attr("name", string(form.FieldPassword)),
				g.Attr("type", passwordType(s.ShowPassword)),
				g.Attr("autocomplete", "current-password"),
				g.Attr("value", s.Password),
				g.Attr("placeholder", "••••••••"),
				html.Class(inputClass(s.Errors[form.FieldPassword] != "")),
			),
			html.Div(
				html.Class("absolute inset-y-0 right-0 pr-3 flex items-center"),
				html.Button(
					g.Attr("type", "submit"),
					g.Attr("formaction", "/login/visibility"),
					g.Attr("formnovalidate"),
					g.Attr("aria-label", "Afficher le mot de passe"),
					g.Attr("aria-pressed", fmt.Sprintf("%t", s.ShowPassword)),
					html.Class("text-gray-400 hover:text-gray-500 focus:outline-none"),
					icon("eye", "h-5 w-5"),
				),
			),
		),

		html.Div(
			html.Class("flex items-center justify-between"),
			html.Div(
				html.Class("flex items-center"),
				html.Input(
					html.ID(string(form.FieldRememberMe)),
					g.Attr("name", string(form.FieldRememberMe)),
					g.Attr("type", "checkbox"),
					g.Attr("value", "on"),
					g.If(s.RememberMe, g.Attr("checked")),
					html.Class("h-4 w-4 text-blue-600 focus:ring-blue-500 border-gray-300 rounded"),
				),
				html.Label(
					g.Attr("for", string(form.FieldRememberMe)),
					html.Class("ml-2 block text-sm text-gray-700"),
					g.Text("Se souvenir de moi"),
				),
			),
			html.Div(
				html.Class("text-sm"),
				html.A(
					html.Href("/forgot-password"),
					html.Class("font-medium text-blue-600 hover:text-blue-500"),
					g.Text("Mot de passe oublié ?"),
				),
			),
		),

		html.Div(
			html.Button(
				g.Attr("type", "submit"),
				html.ID("login-submit"),
				g.If(s.Submitting, g.Attr("disabled")),
				g.If(s.Submitting, g.Attr("aria-busy", "true")),
				html.Class("w-full flex justify-center py-2 px-4 border border-transparent rounded-lg shadow-sm text-sm font-medium text-white bg-blue-600 hover:bg-blue-700 disabled:opacity-50 disabled:cursor-not-allowed"),
				g.Text(submitLabel(s.Submitting)),
			),
		),
	)
}

func field(s form.State, f form.Field, label, iconName string, input ...g.Node) g.Node {
	msg := s.Errors[f]

	return html.Div(
		html.Label(
			g.Attr("for", string(f)),
			html.Class("block text-sm font-medium text-gray-700 mb-1"),
			g.Text(label),
		),
		html.Div(
			html.Class("relative"),
			html.Div(
				html.Class("absolute inset-y-0 left-0 pl-3 flex items-center pointer-events-none"),
				icon(iconName, "h-5 w-5 text-gray-400"),
			),
			g.Group(input),
		),
		g.If(msg != "", html.P(
			html.ID(string(f)+"-error"),
			html.Class("mt-1 text-sm text-red-600"),
			g.Text(msg),
		)),
	)
}

func inputClass(invalid bool) string {
	border := "border-gray-300 focus:ring-blue-500 focus:border-blue-500"
	if invalid {
		border = "border-red-300 focus:ring-red-500 focus:border-red-500"
	}
	return "block w-full pl-10 pr-3 py-2 border " + border + " rounded-lg shadow-sm focus:outline-none focus:ring-0"
}

func passwordType(show bool) string {
	if show {
		return "text"
	}
	return "password"
}

func submitLabel(submitting bool) string {
	if submitting {
		return SubmittingLabel
	}
	return SubmitLabel
}
