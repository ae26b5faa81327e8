package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	cmp "maragu.dev/gomponents"
)

// TemplToGomponentAdapter lets a templ.Component be placed inside a
// gomponents tree. gomponents does not pass a context, so the component is
// rendered with context.Background().
type TemplToGomponentAdapter struct {
	Component templ.Component
}

// Render implements gomponents.Node.
func (a *TemplToGomponentAdapter) Render(w io.Writer) error {
	return a.Component.Render(context.Background(), w)
}

// AdaptTemplToGomponent wraps component as a gomponents node.
func AdaptTemplToGomponent(component templ.Component) cmp.Node {
	return &TemplToGomponentAdapter{Component: component}
}

// TrustedHTML embeds already-sanitized HTML, such as rendered journal
// markdown, in a gomponents tree.
func TrustedHTML(html string) cmp.Node {
	return AdaptTemplToGomponent(templ.Raw(html))
}
