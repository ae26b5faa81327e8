package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
)

// GuidesAPI is the JSON API under /api/v1/guides. Every mutation answers
// with the whole guide and its progress.
type GuidesAPI struct {
	svc *guides.Service
}

// NewGuidesAPI creates a GuidesAPI handler.
func NewGuidesAPI(svc *guides.Service) *GuidesAPI {
	return &GuidesAPI{svc: svc}
}

func guideJSON(c echo.Context, status int, g *domain.Guide, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(status, NewGuideResponse(g))
}

// List returns summaries of the user's guides.
func (a *GuidesAPI) List(c echo.Context) error {
	list, err := a.svc.List(c.Request().Context(), uid(c))
	if err != nil {
		return err
	}
	out := make([]GuideSummary, len(list))
	for i, g := range list {
		out[i] = NewGuideSummary(g)
	}
	return c.JSON(http.StatusOK, out)
}

// Create starts a guide.
func (a *GuidesAPI) Create(c echo.Context) error {
	var in guides.CreateInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	g, err := a.svc.Create(c.Request().Context(), uid(c), in)
	return guideJSON(c, http.StatusCreated, g, err)
}

// Get returns one guide.
func (a *GuidesAPI) Get(c echo.Context) error {
	g, err := a.svc.Get(c.Request().Context(), uid(c), c.Param("gid"))
	return guideJSON(c, http.StatusOK, g, err)
}

// UpdateMeta patches the guide level fields.
func (a *GuidesAPI) UpdateMeta(c echo.Context) error {
	var p guides.MetaPatch
	if err := c.Bind(&p); err != nil {
		return err
	}
	g, err := a.svc.UpdateMeta(c.Request().Context(), uid(c), c.Param("gid"), p)
	return guideJSON(c, http.StatusOK, g, err)
}

// Delete removes a guide.
func (a *GuidesAPI) Delete(c echo.Context) error {
	if err := a.svc.Delete(c.Request().Context(), uid(c), c.Param("gid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Duplicate copies a guide.
func (a *GuidesAPI) Duplicate(c echo.Context) error {
	g, err := a.svc.Duplicate(c.Request().Context(), uid(c), c.Param("gid"))
	return guideJSON(c, http.StatusCreated, g, err)
}

// Progress returns the checked/total counts.
func (a *GuidesAPI) Progress(c echo.Context) error {
	p, err := a.svc.Progress(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ResetChecks unchecks every item.
func (a *GuidesAPI) ResetChecks(c echo.Context) error {
	g, err := a.svc.ResetChecks(c.Request().Context(), uid(c), c.Param("gid"))
	return guideJSON(c, http.StatusOK, g, err)
}

// AddCategory appends a category.
func (a *GuidesAPI) AddCategory(c echo.Context) error {
	var in guides.CategoryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := a.svc.AddCategory(c.Request().Context(), uid(c), c.Param("gid"), in)
	return guideJSON(c, http.StatusCreated, g, err)
}

// UpdateCategory patches a category.
func (a *GuidesAPI) UpdateCategory(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	var in guides.CategoryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := a.svc.UpdateCategory(c.Request().Context(), uid(c), c.Param("gid"), ci, in)
	return guideJSON(c, http.StatusOK, g, err)
}

// DeleteCategory removes a category.
func (a *GuidesAPI) DeleteCategory(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	g, err := a.svc.DeleteCategory(c.Request().Context(), uid(c), c.Param("gid"), ci)
	return guideJSON(c, http.StatusOK, g, err)
}

// MoveCategory moves category :ci to "to".
func (a *GuidesAPI) MoveCategory(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	var req MoveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := a.svc.MoveCategory(c.Request().Context(), uid(c), c.Param("gid"), ci, req.To)
	return guideJSON(c, http.StatusOK, g, err)
}

// AddSkill appends a card.
func (a *GuidesAPI) AddSkill(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	var in guides.SkillInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := a.svc.AddSkill(c.Request().Context(), uid(c), c.Param("gid"), ci, in)
	return guideJSON(c, http.StatusCreated, g, err)
}

// UpdateSkill patches a card.
func (a *GuidesAPI) UpdateSkill(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	var in guides.SkillInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := a.svc.UpdateSkill(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], in)
	return guideJSON(c, http.StatusOK, g, err)
}

// DeleteSkill removes a card.
func (a *GuidesAPI) DeleteSkill(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	g, err := a.svc.DeleteSkill(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1])
	return guideJSON(c, http.StatusOK, g, err)
}

// MoveSkill moves a card, possibly across categories.
func (a *GuidesAPI) MoveSkill(c echo.Context) error {
	var req SkillMoveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := a.svc.MoveSkill(c.Request().Context(), uid(c), c.Param("gid"), req.FromCategory, req.FromIndex, req.ToCategory, req.ToIndex)
	return guideJSON(c, http.StatusOK, g, err)
}

// AddItem appends an item.
func (a *GuidesAPI) AddItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	var req ItemRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := a.svc.AddItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], req.Text)
	return guideJSON(c, http.StatusCreated, g, err)
}

// UpdateItem replaces an item's text.
func (a *GuidesAPI) UpdateItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	var req ItemRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := a.svc.UpdateItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2], req.Text)
	return guideJSON(c, http.StatusOK, g, err)
}

// DeleteItem removes an item.
func (a *GuidesAPI) DeleteItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	g, err := a.svc.DeleteItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2])
	return guideJSON(c, http.StatusOK, g, err)
}

// ToggleItem flips an item's check mark.
func (a *GuidesAPI) ToggleItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	g, err := a.svc.ToggleItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2])
	return guideJSON(c, http.StatusOK, g, err)
}

// MoveItem reorders items within a card.
func (a *GuidesAPI) MoveItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	var req MoveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := a.svc.MoveItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], req.From, req.To)
	return guideJSON(c, http.StatusOK, g, err)
}

// ItemGesture applies a swipe over an item and reports the action taken.
func (a *GuidesAPI) ItemGesture(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	var req SwipeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, action, err := a.svc.ApplyItemGesture(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2], req.Swipe())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, GestureResponse{Action: action.String(), Guide: NewGuideResponse(g)})
}

// Entries lists journal entries, filtered by ?tag= and ?mood=.
func (a *GuidesAPI) Entries(c echo.Context) error {
	f := domain.EntryFilter{Tag: c.QueryParam("tag"), Mood: domain.Mood(c.QueryParam("mood"))}
	entries, err := a.svc.Entries(c.Request().Context(), uid(c), c.Param("gid"), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// AddEntry adds a journal entry.
func (a *GuidesAPI) AddEntry(c echo.Context) error {
	var in guides.EntryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, e, err := a.svc.AddEntry(c.Request().Context(), uid(c), c.Param("gid"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, EntryResponse{Entry: e, Guide: NewGuideResponse(g)})
}

// UpdateEntry replaces a journal entry.
func (a *GuidesAPI) UpdateEntry(c echo.Context) error {
	var in guides.EntryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := a.svc.UpdateEntry(c.Request().Context(), uid(c), c.Param("gid"), c.Param("eid"), in)
	return guideJSON(c, http.StatusOK, g, err)
}

// DeleteEntry removes a journal entry.
func (a *GuidesAPI) DeleteEntry(c echo.Context) error {
	g, err := a.svc.DeleteEntry(c.Request().Context(), uid(c), c.Param("gid"), c.Param("eid"))
	return guideJSON(c, http.StatusOK, g, err)
}
