package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/nfrund/notebook/internal/middleware"
)

const requestTimeout = 15 * time.Second

// client talks to a running notebook server as the user owning token.
type client struct {
	base  *url.URL
	token string
	http  *http.Client
}

func newClient(base, token string) (*client, error) {
	if token == "" {
		return nil, errors.New("no session token: pass --token or set NOTEBOOK_TOKEN")
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", base)
	}
	return &client{base: u, token: token, http: &http.Client{Timeout: requestTimeout}}, nil
}

func (c *client) header() http.Header {
	h := http.Header{}
	h.Set("Cookie", (&http.Cookie{Name: middleware.AuthCookieName, Value: c.token}).String())
	h.Set("X-Request-ID", uuid.NewString())
	return h
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return err
	}
	req.Header = c.header()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e handlers.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Message != "" {
			return fmt.Errorf("%s: %s (%s)", path, e.Message, e.Code)
		}
		return fmt.Errorf("%s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// syncURL is the websocket endpoint matching the server's scheme.
func (c *client) syncURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/app/sync"
	return u.String()
}
