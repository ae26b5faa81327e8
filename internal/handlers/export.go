package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/export"
	"github.com/nfrund/notebook/internal/guides"
	"github.com/nfrund/notebook/web/src/templates/pages"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	qrSize   = 256
)

// ShareHandler produces downloadable forms of a guide.
type ShareHandler struct {
	svc     *guides.Service
	baseURL string
}

// NewShareHandler creates a ShareHandler. baseURL is the public address
// QR codes point at.
func NewShareHandler(svc *guides.Service, baseURL string) *ShareHandler {
	return &ShareHandler{svc: svc, baseURL: baseURL}
}

// ExportXLSX sends the guide as a spreadsheet.
func (h *ShareHandler) ExportXLSX(c echo.Context) error {
	g, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, g); err != nil {
		return fmt.Errorf("failed to export guide %s: %w", g.ID, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename(g)))
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

// QRCode sends a PNG QR code linking to the guide page. The guide is loaded
// first so that codes are only drawn for guides the user owns.
func (h *ShareHandler) QRCode(c echo.Context) error {
	g, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	png, err := qrcode.Encode(h.baseURL+pages.GuideURL(g.ID), qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("failed to draw QR code: %w", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=3600")
	return c.Blob(http.StatusOK, "image/png", png)
}
