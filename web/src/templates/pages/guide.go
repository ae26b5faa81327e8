package pages

import (
	"strconv"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

// GuideData is everything the guide page is drawn from.
type GuideData struct {
	Guide    *domain.Guide
	Progress guides.Progress
	Tab      int
	EditMode bool
	// Filter and Entries are used by journal guides only.
	Filter  domain.EntryFilter
	Entries []domain.JournalEntry
}

// CurrentTab clamps the selected tab to the guide's categories.
func (d GuideData) CurrentTab() int {
	if d.Tab >= len(d.Guide.Categories) {
		return max(len(d.Guide.Categories)-1, 0)
	}
	return max(d.Tab, 0)
}

// GuidePage renders a guide: header, share panel and its board.
func GuidePage(d GuideData) cmp.Node {
	gd := d.Guide
	return cmp.Group{
		g.Header(
			g.Class("page-header guide-header"),
			g.Span(g.Class("guide-icon"), cmp.Text(gd.Icon)),
			g.Div(
				g.H1(cmp.Text(gd.Title)),
				cmp.If(gd.Subtitle != "", g.P(g.Class("muted"), cmp.Text(gd.Subtitle))),
			),
			guideActions(d),
		),
		cmp.If(d.EditMode, metaForm(gd)),
		cmp.If(gd.Kind == domain.KindJournal, Journal(d)),
		cmp.If(gd.Kind != domain.KindJournal, Board(d)),
		sharePanel(gd),
	}
}

func guideActions(d GuideData) cmp.Node {
	url := GuideURL(d.Guide.ID)
	editLabel := "✏️ Edit"
	if d.EditMode {
		editLabel = "✔ Done"
	}
	return g.Div(
		g.Class("guide-actions"),
		g.Form(g.Method("post"), g.Action(url+"/edit"), g.Class("inline"),
			g.Button(g.Type("submit"), cmp.Text(editLabel))),
		cmp.If(d.Guide.Kind == domain.KindChecklist,
			g.Form(g.Method("post"), g.Action(url+"/reset"), g.Class("inline"),
				hx.Confirm("Uncheck every item?"),
				g.Button(g.Type("submit"), cmp.Text("↺ Reset")))),
		g.Form(g.Method("post"), g.Action(url+"/duplicate"), g.Class("inline"),
			g.Button(g.Type("submit"), cmp.Text("⧉ Duplicate"))),
		g.A(g.Class("button"), g.Href(url+"/export.xlsx"), cmp.Text("⬇ Export")),
		g.Form(g.Method("post"), g.Action(url+"/delete"), g.Class("inline"),
			hx.Confirm("Delete this guide? This cannot be undone."),
			g.Button(g.Type("submit"), g.Class("danger"), cmp.Text("🗑 Delete"))),
	)
}

func metaForm(gd *domain.Guide) cmp.Node {
	return g.Form(
		g.Class("card meta-form"),
		g.Method("post"), g.Action(GuideURL(gd.ID)+"/meta"),
		g.Label(g.Class("field"), g.Span(cmp.Text("Title")),
			g.Input(g.Type("text"), g.Name("title"), g.Value(gd.Title), g.Required(), g.MaxLength("120"))),
		g.Label(g.Class("field"), g.Span(cmp.Text("Subtitle")),
			g.Input(g.Type("text"), g.Name("subtitle"), g.Value(gd.Subtitle), g.MaxLength("240"))),
		g.Label(g.Class("field short"), g.Span(cmp.Text("Icon")),
			g.Input(g.Type("text"), g.Name("icon"), g.Value(gd.Icon), g.MaxLength("32"))),
		g.Label(g.Class("field short"), g.Span(cmp.Text("Color")),
			g.Input(g.Type("color"), g.Name("theme_color"), g.Value(gd.ThemeColor))),
		cmp.If(gd.Kind == domain.KindChecklist, g.Label(g.Class("field short"), g.Span(cmp.Text("Layout")),
			g.Select(g.Name("layout"), layoutOptions(gd.Layout)))),
		g.Button(g.Type("submit"), g.Class("primary"), cmp.Text("Save")),
	)
}

func sharePanel(gd *domain.Guide) cmp.Node {
	return g.Section(
		g.Class("share"),
		g.H2(cmp.Text("Open on another device")),
		g.Img(g.Src(GuideURL(gd.ID)+"/qr.png"), g.Alt("QR code linking to this guide"), g.Width("160"), g.Height("160"), cmp.Attr("loading", "lazy")),
	)
}

// Board renders the category tabs and the cards of the selected tab. It is
// the fragment htmx swaps after every change.
func Board(d GuideData) cmp.Node {
	gd := d.Guide
	tab := d.CurrentTab()
	var cards cmp.Node
	if tab < len(gd.Categories) {
		cards = categoryCards(d, tab)
	}
	return g.Div(
		g.ID("board"),
		g.Class("board layout-"+string(gd.Layout)),
		g.Data("guide", gd.ID),
		cmp.If(d.EditMode, g.Data("edit", "true")),
		ProgressBar(d.Progress.Guide),
		tabs(d, tab),
		cards,
		cmp.If(d.EditMode, addCategoryForm(gd.ID)),
	)
}

func tabs(d GuideData, current int) cmp.Node {
	gd := d.Guide
	return g.Nav(
		g.Class("tabs"),
		g.Role("tablist"),
		g.Data("swipe-url", GuideURL(gd.ID)+"/tabs/swipe"),
		g.Data("tab", strconv.Itoa(current)),
		cmp.Map(indexes(len(gd.Categories)), func(ci int) cmp.Node {
			cat := gd.Categories[ci]
			class := "tab"
			if ci == current {
				class += " active"
			}
			var pct cmp.Node
			if ci < len(d.Progress.Categories) && d.Progress.Categories[ci].Total > 0 {
				pct = g.Span(g.Class("tab-progress"), cmp.Textf("%d%%", d.Progress.Categories[ci].Percent()))
			}
			return g.Button(
				g.Type("button"),
				g.Class(class),
				g.Role("tab"),
				g.Aria("selected", strconv.FormatBool(ci == current)),
				g.Data("ci", strconv.Itoa(ci)),
				cmp.If(d.EditMode, cmp.Attr("draggable", "true")),
				hx.Post(GuideURL(gd.ID)+"/tabs/"+strconv.Itoa(ci)),
				hx.Target("#board"),
				hx.Swap("outerHTML"),
				cmp.Text(cat.Icon+" "+cat.Name),
				pct,
			)
		}),
	)
}

func categoryCards(d GuideData, ci int) cmp.Node {
	gd := d.Guide
	cat := gd.Categories[ci]
	return g.Section(
		g.Class("category"),
		g.Data("ci", strconv.Itoa(ci)),
		cmp.If(d.EditMode, categoryEditor(gd.ID, ci, cat, len(gd.Categories))),
		g.Div(
			g.Class("cards"),
			g.Data("ci", strconv.Itoa(ci)),
			cmp.Map(indexes(len(cat.Skills)), func(si int) cmp.Node {
				return card(d, ci, si)
			}),
		),
		cmp.If(d.EditMode, addSkillForm(gd.ID, ci)),
	)
}

func categoryEditor(gid string, ci int, cat domain.Category, count int) cmp.Node {
	url := categoryURL(gid, ci)
	return g.Div(
		g.Class("category-editor"),
		g.Form(
			g.Class("inline"),
			hx.Post(url), hx.Target("#board"), hx.Swap("outerHTML"),
			g.Input(g.Type("text"), g.Name("icon"), g.Value(cat.Icon), g.Class("icon-input"), g.MaxLength("32")),
			g.Input(g.Type("text"), g.Name("name"), g.Value(cat.Name), g.Required(), g.MaxLength("80")),
			g.Button(g.Type("submit"), cmp.Text("Rename")),
		),
		cmp.If(ci > 0, postButton(url+"/move", "◀", "Move tab left", hx.Vals(`{"to": "`+strconv.Itoa(ci-1)+`"}`))),
		cmp.If(ci < count-1, postButton(url+"/move", "▶", "Move tab right", hx.Vals(`{"to": "`+strconv.Itoa(ci+1)+`"}`))),
		postButton(url+"/delete", "🗑", "Delete tab", hx.Confirm("Delete this tab and all of its cards?")),
	)
}

func card(d GuideData, ci, si int) cmp.Node {
	gd := d.Guide
	sk := gd.Categories[ci].Skills[si]
	url := skillURL(gd.ID, ci, si)
	var progress cmp.Node
	if sk.ShowProgress && sk.Bullet.Checkable() && ci < len(d.Progress.Categories) && si < len(d.Progress.Categories[ci].Skills) {
		progress = ProgressBar(d.Progress.Categories[ci].Skills[si])
	}
	collapseLabel := "▾"
	if sk.Collapsed {
		collapseLabel = "▸"
	}
	return g.Article(
		g.Class("skill card"),
		g.Data("ci", strconv.Itoa(ci)),
		g.Data("si", strconv.Itoa(si)),
		cmp.If(d.EditMode, cmp.Attr("draggable", "true")),
		g.Header(
			g.Class("skill-header"),
			postButton(url+"/collapse", collapseLabel, "Collapse card"),
			g.Span(g.Class("skill-icon"), cmp.Text(sk.Icon)),
			editable(d.EditMode, g.H3, url, "title", sk.Title),
			cmp.If(d.EditMode, postButton(url+"/delete", "🗑", "Delete card", hx.Confirm("Delete this card?"))),
		),
		progress,
		cmp.If(d.EditMode, skillOptions(url, sk)),
		cmp.If(!sk.Collapsed, items(d, ci, si, sk)),
		cmp.If(d.EditMode && !sk.Collapsed, addItemForm(url)),
	)
}

// editable renders text that becomes contenteditable in edit mode. The
// client posts the edited HTML to url under field when it loses focus.
func editable(editMode bool, el func(...cmp.Node) cmp.Node, url, field, text string) cmp.Node {
	if !editMode {
		return el(cmp.Text(text))
	}
	return el(
		g.Class("editable"),
		cmp.Attr("contenteditable", "true"),
		g.Data("edit-url", url),
		g.Data("field", field),
		cmp.Text(text),
	)
}

func skillOptions(url string, sk domain.Skill) cmp.Node {
	return g.Form(
		g.Class("skill-options"),
		hx.Post(url), hx.Target("#board"), hx.Swap("outerHTML"), hx.Trigger("change"),
		g.Label(g.Span(cmp.Text("Bullets")), g.Select(g.Name("bullet"), bulletOptions(sk.Bullet))),
		g.Label(
			hidden("show_progress", "false"),
			g.Input(g.Type("checkbox"), g.Name("show_progress"), g.Value("true"), cmp.If(sk.ShowProgress, g.Checked())),
			g.Span(cmp.Text("Show progress")),
		),
		g.Label(g.Span(cmp.Text("Icon")),
			g.Input(g.Type("text"), g.Name("icon"), g.Value(sk.Icon), g.Class("icon-input"), g.MaxLength("32"))),
	)
}

func items(d GuideData, ci, si int, sk domain.Skill) cmp.Node {
	list := g.Ul
	if sk.Bullet == domain.BulletNumber {
		list = g.Ol
	}
	return list(
		g.Class("items bullet-"+string(sk.Bullet)),
		g.Data("ci", strconv.Itoa(ci)),
		g.Data("si", strconv.Itoa(si)),
		g.Data("move-url", skillURL(d.Guide.ID, ci, si)+"/items/move"),
		cmp.Map(indexes(len(sk.Items)), func(ii int) cmp.Node {
			return item(d, ci, si, ii, sk)
		}),
	)
}

func item(d GuideData, ci, si, ii int, sk domain.Skill) cmp.Node {
	gd := d.Guide
	url := itemURL(gd.ID, ci, si, ii)
	checked := sk.Bullet.Checkable() && gd.IsChecked(ci, si, ii)
	class := "item"
	if checked {
		class += " checked"
	}
	return g.Li(
		g.Class(class),
		g.Data("ii", strconv.Itoa(ii)),
		g.Data("swipe-url", url+"/swipe"),
		cmp.If(d.EditMode, cmp.Attr("draggable", "true")),
		cmp.If(sk.Bullet.Checkable(), g.Button(
			g.Type("button"),
			g.Class("check"),
			g.Role("checkbox"),
			g.Aria("checked", strconv.FormatBool(checked)),
			hx.Post(url+"/toggle"), hx.Target("#board"), hx.Swap("outerHTML"),
			cmp.If(checked, cmp.Text("✓")),
		)),
		editable(d.EditMode, g.Span, url, "text", sk.Items[ii]),
		cmp.If(d.EditMode, postButton(url+"/delete", "✕", "Delete item")),
	)
}

func addItemForm(skillURL string) cmp.Node {
	return g.Form(
		g.Class("add-item"),
		hx.Post(skillURL+"/items"), hx.Target("#board"), hx.Swap("outerHTML"),
		g.Input(g.Type("text"), g.Name("text"), g.Placeholder("New item"), g.Required(), g.MaxLength("1000")),
		g.Button(g.Type("submit"), cmp.Text("Add")),
	)
}

func addSkillForm(gid string, ci int) cmp.Node {
	return g.Form(
		g.Class("card add-skill"),
		hx.Post(categoryURL(gid, ci)+"/skills"), hx.Target("#board"), hx.Swap("outerHTML"),
		g.Input(g.Type("text"), g.Name("title"), g.Placeholder("New card title"), g.MaxLength("120")),
		g.Textarea(g.Name("items"), g.Placeholder("One item per line"), g.Rows("3")),
		g.Button(g.Type("submit"), cmp.Text("Add card")),
	)
}

func addCategoryForm(gid string) cmp.Node {
	return g.Form(
		g.Class("add-category"),
		hx.Post(GuideURL(gid)+"/categories"), hx.Target("#board"), hx.Swap("outerHTML"),
		g.Input(g.Type("text"), g.Name("icon"), g.Placeholder("⭐"), g.Class("icon-input"), g.MaxLength("32")),
		g.Input(g.Type("text"), g.Name("name"), g.Placeholder("New tab"), g.MaxLength("80")),
		g.Button(g.Type("submit"), cmp.Text("Add tab")),
	)
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
