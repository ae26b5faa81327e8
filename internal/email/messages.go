package email

import (
	"bytes"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// VerificationEmail builds the message asking a new user to confirm their
// address.
func VerificationEmail(baseURL, token string) (subject, body string, err error) {
	link := baseURL + "/auth/verify?token=" + token
	doc := h.Div(
		h.Style("font-family: sans-serif; line-height: 1.5"),
		h.H2(g.Text("Welcome to your notebook")),
		h.P(g.Text("Confirm your email address to start creating guides:")),
		h.P(h.A(h.Href(link), g.Text("Verify my email"))),
		h.P(h.Small(g.Text("If you did not sign up, you can ignore this message."))),
	)
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return "", "", err
	}
	return "Confirm your email address", buf.String(), nil
}
