package pages

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// AuthData pre-fills the auth forms after a failed submission.
type AuthData struct {
	Email string
}

func field(label, name, kind, value string, extra ...cmp.Node) cmp.Node {
	return g.Label(
		g.Class("field"),
		g.Span(cmp.Text(label)),
		g.Input(g.Type(kind), g.Name(name), g.Value(value), g.Required(), cmp.Group(extra)),
	)
}

// Login renders the sign in form.
func Login(data AuthData) cmp.Node {
	return g.Section(
		g.Class("card narrow"),
		g.H1(cmp.Text("Sign in")),
		g.Form(
			g.Method("post"), g.Action("/auth/login"),
			field("Email", "email", "email", data.Email, g.AutoComplete("email")),
			field("Password", "password", "password", "", g.AutoComplete("current-password")),
			g.Button(g.Type("submit"), g.Class("primary"), cmp.Text("Sign in")),
		),
		g.P(cmp.Text("No account yet? "), g.A(g.Href("/auth/register"), cmp.Text("Register"))),
	)
}

// Register renders the sign up form.
func Register(data AuthData) cmp.Node {
	return g.Section(
		g.Class("card narrow"),
		g.H1(cmp.Text("Create your notebook")),
		g.Form(
			g.Method("post"), g.Action("/auth/register"),
			field("Email", "email", "email", data.Email, g.AutoComplete("email")),
			field("Password", "password", "password", "", g.MinLength("8"), g.AutoComplete("new-password")),
			field("Confirm password", "password_confirm", "password", "", g.MinLength("8")),
			g.Button(g.Type("submit"), g.Class("primary"), cmp.Text("Register")),
		),
		g.P(cmp.Text("Already registered? "), g.A(g.Href("/auth/login"), cmp.Text("Sign in"))),
	)
}

// Unverified asks the user to confirm their email before using the notebook.
func Unverified(email string) cmp.Node {
	return g.Section(
		g.Class("card narrow"),
		g.H1(cmp.Text("Check your inbox")),
		g.P(
			cmp.Text("We sent a verification link to "),
			g.Strong(cmp.Text(email)),
			cmp.Text(". Follow it to start creating guides."),
		),
		g.Form(
			g.Method("post"), g.Action("/auth/resend"),
			g.Button(g.Type("submit"), cmp.Text("Send the link again")),
		),
	)
}

// Home is the landing page for visitors who are not signed in.
func Home() cmp.Node {
	return g.Section(
		g.Class("hero"),
		g.H1(cmp.Text("Your personal notebook")),
		g.P(cmp.Text("Build checklists of cards grouped into tabs, tick items off with a swipe, and keep a journal. Everything syncs between your devices and stays readable offline.")),
		g.Div(
			g.Class("actions"),
			g.A(g.Class("button primary"), g.Href("/auth/register"), cmp.Text("Get started")),
			g.A(g.Class("button"), g.Href("/auth/login"), cmp.Text("Sign in")),
		),
	)
}
