// Package view renders the dashboard pages as HTML.
//
// Every interactive control is a plain form posting to a /ui or /login route
// so the pages work without scripts. The small script embedded in each page
// only reports pointer-downs and viewport changes back to the server.
package view

import (
	"bytes"
	"fmt"
	"net/http"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/mchmarny/dashd/pkg/menu"
)

// Document wraps body in a complete HTML document.
func Document(title string, head []g.Node, body ...g.Node) g.Node {
	return html.Doctype(
		html.HTML(
			html.Lang("fr"),
			html.Head(
				html.Meta(g.Attr("charset", "utf-8")),
				html.Meta(g.Attr("name", "viewport"), g.Attr("content", "width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(title)),
				html.Script(html.Src("https://cdn.tailwindcss.com")),
				g.Group(head),
			),
			html.Body(body...),
		),
	)
}

// Write renders n and sends it with the given status. Rendering happens
// before the header is written so a rendering failure still yields a 500.
func Write(w http.ResponseWriter, status int, n g.Node) error {
	var buf bytes.Buffer
	if err := n.Render(&buf); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return fmt.Errorf("render page: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

// icon renders a placeholder for a named icon. The artwork itself is supplied
// by the stylesheet.
func icon(name, class string) g.Node {
	return html.Span(
		html.Class("icon icon-"+name+" inline-block flex-shrink-0 "+class),
		g.Attr("data-icon", name),
		g.Attr("aria-hidden", "true"),
	)
}

func menuIcon(ic menu.Icon, highlighted bool) g.Node {
	color := ic.Color
	if highlighted {
		color = "text-white"
	}
	return icon(ic.Name, "w-5 h-5 "+color)
}

// postButton renders a single-button form posting to action. The current
// route travels in a hidden field so the handler can redirect back.
func postButton(action, returnTo, class, label string, children ...g.Node) g.Node {
	return html.Form(
		g.Attr("method", "post"),
		g.Attr("action", action),
		html.Class("contents"),
		html.Input(g.Attr("type", "hidden"), g.Attr("name", "return"), g.Attr("value", returnTo)),
		html.Button(
			g.Attr("type", "submit"),
			html.Class(class),
			g.If(label != "", g.Attr("aria-label", label)),
			g.Group(children),
		),
	)
}
