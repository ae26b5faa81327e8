package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/guides"
)

// AddEntry adds a journal entry from the entry form.
func (h *GuidePages) AddEntry(c echo.Context) error {
	var in guides.EntryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, _, err := h.svc.AddEntry(c.Request().Context(), uid(c), c.Param("gid"), in)
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// UpdateEntry saves an edited entry.
func (h *GuidePages) UpdateEntry(c echo.Context) error {
	var in guides.EntryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := h.svc.UpdateEntry(c.Request().Context(), uid(c), c.Param("gid"), c.Param("eid"), in)
	if err != nil {
		return err
	}
	return h.board(c, g)
}

// DeleteEntry removes an entry.
func (h *GuidePages) DeleteEntry(c echo.Context) error {
	g, err := h.svc.DeleteEntry(c.Request().Context(), uid(c), c.Param("gid"), c.Param("eid"))
	if err != nil {
		return err
	}
	return h.board(c, g)
}
