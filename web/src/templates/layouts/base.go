// Package layouts holds the page shell every notebook page is drawn in.
package layouts

import (
	"github.com/nfrund/notebook/internal/view"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

// HTMXSrc is the htmx build the pages load.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4"

// Page describes the shell around a page body.
type Page struct {
	Title    string
	Flashes  view.FlashData
	SignedIn bool
	// ThemeStyle holds CSS custom properties for the current guide's colors.
	ThemeStyle string
	// ThemeColor feeds the browser's theme-color meta tag.
	ThemeColor string
}

// Base renders a complete HTML document around body.
func Base(p Page, body ...cmp.Node) cmp.Node {
	themeColor := p.ThemeColor
	if themeColor == "" {
		themeColor = "#4f46e5"
	}
	return g.Doctype(
		g.HTML(
			g.Lang("en"),
			g.Head(
				g.Meta(g.Charset("utf-8")),
				g.Meta(g.Name("viewport"), g.Content("width=device-width, initial-scale=1")),
				g.Meta(g.Name("theme-color"), g.Content(themeColor)),
				g.TitleEl(cmp.Text(CalculateTitle(p.Title))),
				g.Link(g.Rel("manifest"), g.Href("/manifest.json")),
				g.Link(g.Rel("icon"), g.Href("/static/icons/icon-192.png")),
				g.Link(g.Rel("stylesheet"), g.Href("/static/css/app.css")),
				g.Script(g.Src(HTMXSrc), g.Defer()),
				g.Script(g.Src("/static/js/app.js"), g.Defer()),
			),
			g.Body(
				cmp.If(p.ThemeStyle != "", g.Style(p.ThemeStyle)),
				hx.Headers(`{"Accept": "text/html"}`),
				nav(p.SignedIn),
				Flashes(p.Flashes),
				g.Main(g.Class("container"), cmp.Group(body)),
				g.Div(g.ID("dialog")),
			),
		),
	)
}

func nav(signedIn bool) cmp.Node {
	return g.Nav(
		g.Class("topbar"),
		g.A(g.Class("brand"), g.Href("/"), cmp.Text("📓 Notebook")),
		cmp.If(signedIn, g.Div(
			g.Class("topbar-links"),
			g.A(g.Href("/app/guides"), cmp.Text("My guides")),
			g.Form(
				g.Method("post"), g.Action("/auth/logout"), g.Class("inline"),
				g.Button(g.Type("submit"), g.Class("link"), cmp.Text("Sign out")),
			),
		)),
		cmp.If(!signedIn, g.Div(
			g.Class("topbar-links"),
			g.A(g.Href("/auth/login"), cmp.Text("Sign in")),
			g.A(g.Href("/auth/register"), cmp.Text("Register")),
		)),
		g.Span(g.ID("connection"), g.Class("connection"), g.Title("Live updates"), cmp.Text("●")),
	)
}

// Flashes renders queued flash messages.
func Flashes(f view.FlashData) cmp.Node {
	if f.Empty() {
		return g.Div(g.ID("flashes"))
	}
	return g.Div(
		g.ID("flashes"),
		cmp.Map(f.Success, func(m string) cmp.Node {
			return g.Div(g.Class("flash flash-success"), g.Role("status"), cmp.Text(m))
		}),
		cmp.Map(f.Error, func(m string) cmp.Node {
			return g.Div(g.Class("flash flash-error"), g.Role("alert"), cmp.Text(m))
		}),
	)
}
