package pages

import (
	"fmt"
	"strconv"

	"github.com/nfrund/notebook/internal/domain"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

// ProgressBar draws checked/total as a bar with a label.
func ProgressBar(p domain.Progress) cmp.Node {
	class := "progress"
	if p.Complete() {
		class += " complete"
	}
	return g.Div(
		g.Class(class),
		g.Role("progressbar"),
		g.Aria("valuemin", "0"),
		g.Aria("valuemax", "100"),
		g.Aria("valuenow", strconv.Itoa(p.Percent())),
		g.Div(g.Class("progress-fill"), g.Style(fmt.Sprintf("width:%d%%", p.Percent()))),
		g.Span(g.Class("progress-label"), cmp.Textf("%d/%d", p.Done, p.Total)),
	)
}

// postButton is a small form-less button that posts to url and swaps the
// board with the response.
func postButton(url, label, title string, extra ...cmp.Node) cmp.Node {
	return g.Button(
		g.Type("button"),
		g.Class("icon-button"),
		g.Title(title),
		g.Aria("label", title),
		hx.Post(url),
		hx.Target("#board"),
		hx.Swap("outerHTML"),
		cmp.Group(extra),
		cmp.Text(label),
	)
}

func hidden(name, value string) cmp.Node {
	return g.Input(g.Type("hidden"), g.Name(name), g.Value(value))
}

func bulletOptions(current domain.BulletStyle) cmp.Node {
	styles := []domain.BulletStyle{
		domain.BulletCheckbox, domain.BulletNumber, domain.BulletSquare, domain.BulletCircle, domain.BulletNone,
	}
	return cmp.Map(styles, func(b domain.BulletStyle) cmp.Node {
		return g.Option(g.Value(string(b)), cmp.If(b == current, g.Selected()), cmp.Text(string(b)))
	})
}

func layoutOptions(current domain.Layout) cmp.Node {
	layouts := []domain.Layout{domain.LayoutGrid, domain.LayoutList, domain.LayoutCompact}
	return cmp.Map(layouts, func(l domain.Layout) cmp.Node {
		return g.Option(g.Value(string(l)), cmp.If(l == current, g.Selected()), cmp.Text(string(l)))
	})
}
