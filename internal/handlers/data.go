package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
)

// maxDataBody bounds PUT bodies on the data API.
const maxDataBody = 1 << 20

// DataAPI exposes guide data by hierarchical path:
// /api/v1/data/users/{uid}/guides/{gid}/categories/0/skills/1/title.
type DataAPI struct {
	svc *guides.Service
}

// NewDataAPI creates a DataAPI handler.
func NewDataAPI(svc *guides.Service) *DataAPI {
	return &DataAPI{svc: svc}
}

// Get returns the JSON value at the path.
func (d *DataAPI) Get(c echo.Context) error {
	v, err := d.svc.GetPath(c.Request().Context(), uid(c), c.Param("*"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// Put replaces the value at the path with the JSON request body and returns
// the updated guide.
func (d *DataAPI) Put(c echo.Context) error {
	var value any
	dec := json.NewDecoder(http.MaxBytesReader(c.Response(), c.Request().Body, maxDataBody))
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("%w: body must be a JSON value: %v", domain.ErrInvalidInput, err)
	}
	g, err := d.svc.SetPath(c.Request().Context(), uid(c), c.Param("*"), value)
	return guideJSON(c, http.StatusOK, g, err)
}

// Delete removes the value at the path.
func (d *DataAPI) Delete(c echo.Context) error {
	if err := d.svc.DeletePath(c.Request().Context(), uid(c), c.Param("*")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
