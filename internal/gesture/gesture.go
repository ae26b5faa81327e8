// Package gesture classifies touch swipes and maps them to notebook actions.
package gesture

import (
	"math"
	"time"
)

// Direction is the classified direction of a swipe.
type Direction int

const (
	None Direction = iota
	Left
	Right
	Up
	Down
	Diagonal
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case Diagonal:
		return "diagonal"
	default:
		return "none"
	}
}

// Swipe is the movement between touchstart and touchend. DY grows downward,
// as screen coordinates do.
type Swipe struct {
	DX       float64       `json:"dx"`
	DY       float64       `json:"dy"`
	Duration time.Duration `json:"duration"`
}

// Config holds the thresholds a swipe must meet.
type Config struct {
	// MinDistance is the shortest movement in pixels that counts as a swipe.
	MinDistance float64
	// AngleTolerance is how far in degrees a swipe may stray from an axis.
	AngleTolerance float64
	// MaxDuration is the slowest swipe accepted. Zero disables the check.
	MaxDuration time.Duration
}

// DefaultConfig returns the thresholds used by the notebook pages.
func DefaultConfig() Config {
	return Config{MinDistance: 50, AngleTolerance: 30, MaxDuration: time.Second}
}

// Classify returns the direction of s under the default thresholds.
func Classify(s Swipe) Direction {
	return DefaultConfig().Classify(s)
}

// Classify returns the direction of s, or None when s is too short or too
// slow, or Diagonal when it is not close enough to either axis.
func (c Config) Classify(s Swipe) Direction {
	if c.MaxDuration > 0 && s.Duration > c.MaxDuration {
		return None
	}
	if math.Hypot(s.DX, s.DY) < c.MinDistance {
		return None
	}

	// angle from the horizontal axis, folded into [0, 90]
	angle := math.Atan2(math.Abs(s.DY), math.Abs(s.DX)) * 180 / math.Pi
	switch {
	case angle <= c.AngleTolerance:
		if s.DX > 0 {
			return Right
		}
		return Left
	case angle >= 90-c.AngleTolerance:
		if s.DY > 0 {
			return Down
		}
		return Up
	default:
		return Diagonal
	}
}

// ItemAction is what a swipe on a checklist item does.
type ItemAction int

const (
	ItemNoop ItemAction = iota
	ItemToggle
	ItemDelete
)

func (a ItemAction) String() string {
	switch a {
	case ItemToggle:
		return "toggle"
	case ItemDelete:
		return "delete"
	default:
		return "none"
	}
}

// ItemActionFor maps a swipe direction on an item to an action.
func ItemActionFor(d Direction) ItemAction {
	switch d {
	case Right:
		return ItemToggle
	case Left:
		return ItemDelete
	default:
		return ItemNoop
	}
}

// NextTab returns the category tab to show after swiping on the tab strip.
// Swiping left advances and swiping right goes back; the index does not wrap.
func NextTab(d Direction, current, count int) int {
	switch {
	case count <= 0:
		return 0
	case d == Left && current < count-1:
		return current + 1
	case d == Right && current > 0:
		return current - 1
	default:
		return current
	}
}
