package handlers

import (
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GuideSummary is the list view of a guide.
type GuideSummary struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Subtitle   string           `json:"subtitle"`
	Icon       string           `json:"icon"`
	ThemeColor string           `json:"theme_color"`
	Kind       domain.GuideKind `json:"kind"`
	Progress   domain.Progress  `json:"progress"`
	Entries    int              `json:"entries"`
	URL        string           `json:"url"`
}

// NewGuideSummary builds the summary of g.
func NewGuideSummary(g *domain.Guide) GuideSummary {
	return GuideSummary{
		ID:         g.ID,
		Title:      g.Title,
		Subtitle:   g.Subtitle,
		Icon:       g.Icon,
		ThemeColor: g.ThemeColor,
		Kind:       g.Kind,
		Progress:   g.Progress(),
		Entries:    len(g.Entries),
		URL:        "/api/v1/guides/" + g.ID,
	}
}

// GuideResponse is a full guide with its progress totals.
type GuideResponse struct {
	*domain.Guide
	Progress guides.Progress `json:"progress"`
}

// NewGuideResponse wraps g with its progress.
func NewGuideResponse(g *domain.Guide) GuideResponse {
	return GuideResponse{Guide: g, Progress: guides.ProgressOf(g)}
}

// GestureResponse reports what a swipe did.
type GestureResponse struct {
	Action string        `json:"action"`
	Guide  GuideResponse `json:"guide"`
}

// EntryResponse wraps a newly added journal entry.
type EntryResponse struct {
	Entry domain.JournalEntry `json:"entry"`
	Guide GuideResponse       `json:"guide"`
}
