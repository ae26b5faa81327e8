package view

import (
	"strconv"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	stateSessionName = "app-state"
	keyLastGuide     = "last_guide"
	keyEditMode      = "edit_mode"
	keyTabPrefix     = "tab:"
)

// AppState is what the notebook remembers between page loads: the guide that
// was open last, whether edit mode is on and the selected tab of each guide.
type AppState struct {
	LastGuide string
	EditMode  bool
	Tabs      map[string]int
}

// Tab returns the selected category tab of a guide.
func (s AppState) Tab(guideID string) int {
	return s.Tabs[guideID]
}

// LoadAppState reads the state from the session. A missing or unreadable
// session yields the zero state.
func LoadAppState(c echo.Context) AppState {
	state := AppState{Tabs: map[string]int{}}
	sess, err := session.Get(stateSessionName, c)
	if err != nil {
		return state
	}
	for k, v := range sess.Values {
		key, ok := k.(string)
		if !ok {
			continue
		}
		switch {
		case key == keyLastGuide:
			state.LastGuide, _ = v.(string)
		case key == keyEditMode:
			state.EditMode, _ = v.(bool)
		case len(key) > len(keyTabPrefix) && key[:len(keyTabPrefix)] == keyTabPrefix:
			if tab, ok := v.(int); ok {
				state.Tabs[key[len(keyTabPrefix):]] = tab
			}
		}
	}
	return state
}

// SaveAppState writes the state to the session. Tabs of guides no longer
// listed are dropped.
func SaveAppState(c echo.Context, state AppState) error {
	sess, err := session.Get(stateSessionName, c)
	if err != nil {
		return err
	}
	for k := range sess.Values {
		if key, ok := k.(string); ok && len(key) > len(keyTabPrefix) && key[:len(keyTabPrefix)] == keyTabPrefix {
			delete(sess.Values, k)
		}
	}
	sess.Values[keyLastGuide] = state.LastGuide
	sess.Values[keyEditMode] = state.EditMode
	for id, tab := range state.Tabs {
		sess.Values[keyTabPrefix+id] = tab
	}
	return sess.Save(c.Request(), c.Response())
}

// UpdateAppState loads the state, applies fn and saves it back.
func UpdateAppState(c echo.Context, fn func(*AppState)) (AppState, error) {
	state := LoadAppState(c)
	fn(&state)
	return state, SaveAppState(c, state)
}

// TabParam parses a ?tab= query value, falling back to def.
func TabParam(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
