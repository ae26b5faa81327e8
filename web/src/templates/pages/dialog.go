package pages

import (
	"github.com/nfrund/notebook/internal/view"
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// ErrorDialog is the modal htmx swaps into #dialog when a request fails.
func ErrorDialog(d view.Dialog) cmp.Node {
	return g.Div(
		g.Class("modal-backdrop"),
		g.Data("code", d.Code),
		g.Div(
			g.Class("modal"),
			g.Role("alertdialog"),
			g.Aria("labelledby", "dialog-title"),
			g.H2(g.ID("dialog-title"), cmp.Text(d.Title)),
			g.P(cmp.Text(d.Message)),
			g.Button(
				g.Type("button"),
				g.Class("primary"),
				cmp.Attr("onclick", "document.getElementById('dialog').replaceChildren()"),
				cmp.Text("OK"),
			),
		),
	)
}
