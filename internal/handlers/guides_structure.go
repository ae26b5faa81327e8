package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
)

func categoryForm(c echo.Context) guides.CategoryInput {
	return guides.CategoryInput{Name: formString(c, "name"), Icon: formString(c, "icon")}
}

func skillForm(c echo.Context) guides.SkillInput {
	in := guides.SkillInput{
		Title:        formString(c, "title"),
		Icon:         formString(c, "icon"),
		Collapsed:    formBool(c, "collapsed"),
		ShowProgress: formBool(c, "show_progress"),
		Items:        formLines(c, "items"),
	}
	if b := formString(c, "bullet"); b != nil {
		bullet := domain.BulletStyle(*b)
		in.Bullet = &bullet
	}
	return in
}

// AddCategory appends a tab and selects it.
func (h *GuidePages) AddCategory(c echo.Context) error {
	g, err := h.svc.AddCategory(c.Request().Context(), uid(c), c.Param("gid"), categoryForm(c))
	if err != nil {
		return err
	}
	return h.selectTab(c, g, len(g.Categories)-1)
}

// UpdateCategory renames a tab or changes its icon.
func (h *GuidePages) UpdateCategory(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	g, err := h.svc.UpdateCategory(c.Request().Context(), uid(c), c.Param("gid"), ci, categoryForm(c))
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// DeleteCategory removes a tab with its cards.
func (h *GuidePages) DeleteCategory(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	g, err := h.svc.DeleteCategory(c.Request().Context(), uid(c), c.Param("gid"), ci)
	if err != nil {
		return err
	}
	return h.selectTab(c, g, max(ci-1, 0))
}

// MoveCategory moves tab :ci to position "to" and keeps it selected.
func (h *GuidePages) MoveCategory(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	var req MoveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := h.svc.MoveCategory(c.Request().Context(), uid(c), c.Param("gid"), ci, req.To)
	if err != nil {
		return err
	}
	return h.selectTab(c, g, req.To)
}

// AddSkill appends a card to tab :ci.
func (h *GuidePages) AddSkill(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	g, err := h.svc.AddSkill(c.Request().Context(), uid(c), c.Param("gid"), ci, skillForm(c))
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// UpdateSkill saves a card's title, icon, bullet style or progress flag.
func (h *GuidePages) UpdateSkill(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	g, err := h.svc.UpdateSkill(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], skillForm(c))
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// CollapseSkill folds or unfolds a card.
func (h *GuidePages) CollapseSkill(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	g, err := h.svc.Get(ctx, uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	sk, err := g.Skill(ix[0], ix[1])
	if err != nil {
		return err
	}
	collapsed := !sk.Collapsed
	g, err = h.svc.UpdateSkill(ctx, uid(c), g.ID, ix[0], ix[1], guides.SkillInput{Collapsed: &collapsed})
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// DeleteSkill removes a card.
func (h *GuidePages) DeleteSkill(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	g, err := h.svc.DeleteSkill(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1])
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// MoveSkill handles a card dropped on another card or tab.
func (h *GuidePages) MoveSkill(c echo.Context) error {
	var req SkillMoveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := h.svc.MoveSkill(c.Request().Context(), uid(c), c.Param("gid"), req.FromCategory, req.FromIndex, req.ToCategory, req.ToIndex)
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// AddItem appends an item to a card.
func (h *GuidePages) AddItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	var req ItemRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := h.svc.AddItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], req.Text)
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// UpdateItem saves an inline edit. The text arrives as contenteditable HTML.
func (h *GuidePages) UpdateItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	var req ItemRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := h.svc.UpdateItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2], req.Text)
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// DeleteItem removes an item.
func (h *GuidePages) DeleteItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	g, err := h.svc.DeleteItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2])
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// ToggleItem checks or unchecks an item.
func (h *GuidePages) ToggleItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	g, err := h.svc.ToggleItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2])
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// MoveItem reorders items within a card.
func (h *GuidePages) MoveItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si")
	if err != nil {
		return err
	}
	var req MoveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := h.svc.MoveItem(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], req.From, req.To)
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// SwipeItem applies a swipe over an item: right toggles, left deletes.
func (h *GuidePages) SwipeItem(c echo.Context) error {
	ix, err := indexes(c, "ci", "si", "ii")
	if err != nil {
		return err
	}
	var req SwipeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, _, err := h.svc.ApplyItemGesture(c.Request().Context(), uid(c), c.Param("gid"), ix[0], ix[1], ix[2], req.Swipe())
	if err != nil {
		return err
	}
	return h.board(c, g)
}
