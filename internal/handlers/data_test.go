package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDataAPI(t *testing.T) {
	e, _ := setupGuidesTest(t)
	base := "/api/v1/data/users/alice/guides/gimported"

	rec := serve(e, jsonRequest(http.MethodPut, base, "alice", `{"title":"Imported","categories":[{"name":"Packing","skills":[{"title":"Bag","items":["Socks"]}]}]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[handlers.GuideResponse](t, rec)
	assert.Equal(t, "gimported", created.ID)
	assert.Equal(t, "user:alice", created.Owner)
	assert.Equal(t, domain.Progress{Done: 0, Total: 1}, created.Progress.Guide)

	rec = serve(e, jsonRequest(http.MethodGet, base+"/categories/0/skills/0/items/0", "alice", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Socks", decode[string](t, rec))

	rec = serve(e, jsonRequest(http.MethodPut, base+"/checked/0-0-0", "alice", `true`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[handlers.GuideResponse](t, rec).Progress.Guide.Done)

	rec = serve(e, jsonRequest(http.MethodGet, "/api/v1/data/users/alice/guides", "alice", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec), "gimported")

	rec = serve(e, jsonRequest(http.MethodDelete, base+"/categories/0/skills/0/items/0", "alice", ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(e, jsonRequest(http.MethodGet, base+"/checked", "alice", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec), "checks follow deleted items")

	rec = serve(e, jsonRequest(http.MethodDelete, base, "alice", ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(e, jsonRequest(http.MethodGet, base, "alice", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDataAPI_Errors(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)

	tests := []struct {
		name   string
		req    testRequest
		status int
	}{
		{"another user's data", jsonRequest(http.MethodGet, "/api/v1/data/users/bob/guides", "alice", ""), http.StatusForbidden},
		{"writing another user's guide", jsonRequest(http.MethodPut, "/api/v1/data/users/bob/guides/g1/title", "alice", `"x"`), http.StatusForbidden},
		{"not a users path", jsonRequest(http.MethodGet, "/api/v1/data/guides/"+g.ID, "alice", ""), http.StatusBadRequest},
		{"unknown field", jsonRequest(http.MethodGet, "/api/v1/data/users/alice/guides/"+g.ID+"/secret", "alice", ""), http.StatusBadRequest},
		{"body is not json", jsonRequest(http.MethodPut, "/api/v1/data/users/alice/guides/"+g.ID+"/title", "alice", `{`), http.StatusBadRequest},
		{"collection cannot be written", jsonRequest(http.MethodPut, "/api/v1/data/users/alice/guides", "alice", `{}`), http.StatusBadRequest},
		{"title must not be empty", jsonRequest(http.MethodPut, "/api/v1/data/users/alice/guides/"+g.ID+"/title", "alice", `""`), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	stored, err := svc.Get(t.Context(), "user:alice", g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", stored.Title)
}

func TestShareHandler_ExportXLSX(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)
	_, err := svc.ToggleItem(t.Context(), "user:alice", g.ID, 0, 0, 1)
	require.NoError(t, err)

	rec := serve(e, testRequest{method: http.MethodGet, path: "/app/guides/" + g.ID + "/export.xlsx", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "spreadsheetml")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())

	rec = serve(e, testRequest{method: http.MethodGet, path: "/app/guides/" + g.ID + "/export.xlsx", user: "bob"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareHandler_QRCode(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)

	rec := serve(e, testRequest{method: http.MethodGet, path: "/app/guides/" + g.ID + "/qr.png", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	rec = serve(e, testRequest{method: http.MethodGet, path: "/app/guides/missing/qr.png", user: "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
