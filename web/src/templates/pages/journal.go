package pages

import (
	"net/url"
	"strings"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/richtext"
	"github.com/nfrund/notebook/internal/view"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

type moodChoice struct {
	mood  domain.Mood
	emoji string
}

var moods = []moodChoice{
	{domain.MoodGreat, "😄"},
	{domain.MoodGood, "🙂"},
	{domain.MoodOkay, "😐"},
	{domain.MoodBad, "🙁"},
	{domain.MoodAwful, "😫"},
}

func moodEmoji(m domain.Mood) string {
	for _, x := range moods {
		if x.mood == m {
			return x.emoji
		}
	}
	return ""
}

func moodOptions(current domain.Mood, blank string) cmp.Node {
	return cmp.Group{
		g.Option(g.Value(""), cmp.If(current == "", g.Selected()), cmp.Text(blank)),
		cmp.Map(moods, func(x moodChoice) cmp.Node {
			return g.Option(g.Value(string(x.mood)), cmp.If(x.mood == current, g.Selected()), cmp.Text(x.emoji+" "+string(x.mood)))
		}),
	}
}

// Journal renders a journal guide: filters, the new entry form and the
// matching entries, newest first.
func Journal(d GuideData) cmp.Node {
	gd := d.Guide
	return g.Div(
		g.ID("board"),
		g.Class("journal"),
		g.Data("guide", gd.ID),
		journalFilter(d),
		entryForm(GuideURL(gd.ID)+"/entries", domain.JournalEntry{}, "Add entry"),
		cmp.If(len(d.Entries) == 0, g.P(g.Class("empty"), cmp.Text("No entries match."))),
		cmp.Map(d.Entries, func(e domain.JournalEntry) cmp.Node {
			return entry(gd.ID, e, d.EditMode)
		}),
	)
}

func journalFilter(d GuideData) cmp.Node {
	gd := d.Guide
	tags := gd.Tags()
	return g.Form(
		g.Class("journal-filter"),
		g.Method("get"), g.Action(GuideURL(gd.ID)),
		hx.Get(GuideURL(gd.ID)), hx.Target("#board"), hx.Swap("outerHTML"), hx.Trigger("change"), hx.PushURL("true"),
		g.Label(g.Span(cmp.Text("Tag")), g.Select(
			g.Name("tag"),
			g.Option(g.Value(""), cmp.Text("All tags")),
			cmp.Map(tags, func(t string) cmp.Node {
				return g.Option(g.Value(t), cmp.If(strings.EqualFold(t, d.Filter.Tag), g.Selected()), cmp.Text("#"+t))
			}),
		)),
		g.Label(g.Span(cmp.Text("Mood")), g.Select(g.Name("mood"), moodOptions(d.Filter.Mood, "Any mood"))),
		g.NoScript(g.Button(g.Type("submit"), cmp.Text("Filter"))),
	)
}

func entryForm(action string, e domain.JournalEntry, submit string) cmp.Node {
	return g.Form(
		g.Class("card entry-form"),
		hx.Post(action), hx.Target("#board"), hx.Swap("outerHTML"),
		g.Method("post"), g.Action(action),
		g.Input(g.Type("text"), g.Name("title"), g.Value(e.Title), g.Placeholder("Title"), g.MaxLength("160")),
		g.Input(g.Type("date"), g.Name("date"), g.Value(e.Date)),
		g.Select(g.Name("mood"), moodOptions(e.Mood, "Mood")),
		g.Input(g.Type("text"), g.Name("tags"), g.Value(strings.Join(e.Tags, ", ")), g.Placeholder("tags, comma separated")),
		g.Textarea(g.Name("content"), g.Rows("5"), g.Placeholder("Write in markdown"), cmp.Text(e.Content)),
		g.Button(g.Type("submit"), g.Class("primary"), cmp.Text(submit)),
	)
}

func entry(gid string, e domain.JournalEntry, editMode bool) cmp.Node {
	body, err := richtext.Markdown(e.Content)
	content := view.TrustedHTML(body)
	if err != nil {
		content = g.P(cmp.Text(e.Content))
	}
	return g.Article(
		g.Class("entry card"),
		g.ID("entry-"+e.ID),
		g.Header(
			g.Class("entry-header"),
			g.Span(g.Class("entry-date"), cmp.Text(e.Date)),
			cmp.If(e.Mood != "", g.Span(g.Class("entry-mood"), g.Title(string(e.Mood)), cmp.Text(moodEmoji(e.Mood)))),
			cmp.If(e.Title != "", g.H3(cmp.Text(e.Title))),
		),
		g.Div(g.Class("entry-content"), content),
		cmp.If(len(e.Tags) > 0, g.Div(
			g.Class("tags"),
			cmp.Map(e.Tags, func(t string) cmp.Node {
				return g.A(g.Class("tag"), g.Href(GuideURL(gid)+"?tag="+url.QueryEscape(t)), cmp.Text("#"+t))
			}),
		)),
		cmp.If(editMode, g.Div(
			g.Class("entry-edit"),
			entryForm(entryURL(gid, e.ID), e, "Save"),
			postButton(entryURL(gid, e.ID)+"/delete", "🗑", "Delete entry", hx.Confirm("Delete this entry?")),
		)),
	)
}
