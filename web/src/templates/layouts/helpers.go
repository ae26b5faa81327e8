package layouts

// CalculateTitle builds the document title shown in the browser tab.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " - Notebook"
	}
	return "Notebook"
}
