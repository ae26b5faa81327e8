package pages

import (
	"github.com/nfrund/notebook/internal/color"
	"github.com/nfrund/notebook/internal/domain"
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// GuideList renders the signed-in user's guides with a form to start a new
// one.
func GuideList(guides []*domain.Guide) cmp.Node {
	return cmp.Group{
		g.Header(
			g.Class("page-header"),
			g.H1(cmp.Text("My guides")),
		),
		g.Div(
			g.ID("guides"),
			g.Class("guide-grid"),
			cmp.If(len(guides) == 0, g.P(g.Class("empty"), cmp.Text("No guides yet. Create your first one below."))),
			cmp.Map(guides, guideTile),
		),
		newGuideForm(),
	}
}

func guideTile(gd *domain.Guide) cmp.Node {
	style := ""
	if p, err := color.NewPalette(gd.ThemeColor); err == nil {
		style = p.CSSVars()
	}
	return g.A(
		g.Class("guide-tile"),
		g.Href(GuideURL(gd.ID)),
		cmp.If(style != "", g.Style(style)),
		g.Span(g.Class("guide-icon"), cmp.Text(gd.Icon)),
		g.Div(
			g.Strong(cmp.Text(gd.Title)),
			cmp.If(gd.Subtitle != "", g.P(g.Class("muted"), cmp.Text(gd.Subtitle))),
		),
		cmp.If(gd.Kind == domain.KindChecklist, ProgressBar(gd.Progress())),
		cmp.If(gd.Kind == domain.KindJournal, g.Span(g.Class("muted"), cmp.Textf("%d entries", len(gd.Entries)))),
	)
}

func newGuideForm() cmp.Node {
	return g.Form(
		g.Class("card new-guide"),
		g.Method("post"), g.Action("/app/guides"),
		g.H2(cmp.Text("New guide")),
		g.Label(g.Class("field"), g.Span(cmp.Text("Title")),
			g.Input(g.Type("text"), g.Name("title"), g.Required(), g.MaxLength("120"))),
		g.Label(g.Class("field"), g.Span(cmp.Text("Kind")),
			g.Select(g.Name("kind"),
				g.Option(g.Value(string(domain.KindChecklist)), cmp.Text("Checklist")),
				g.Option(g.Value(string(domain.KindJournal)), cmp.Text("Journal")),
			)),
		g.Label(g.Class("field"), g.Span(cmp.Text("Color")),
			g.Input(g.Type("color"), g.Name("theme_color"), g.Value(domain.DefaultThemeColor))),
		g.Button(g.Type("submit"), g.Class("primary"), cmp.Text("Create")),
	)
}
