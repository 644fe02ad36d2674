package button

import (
	"speaker-remote/internal/domain/model"
	"time"
)

// Classifier turns debounced level changes of one button into press, click,
// multi-click and long-click events. It is not safe for concurrent use.
type Classifier struct {
	button model.ButtonID
	hold   time.Duration
	window time.Duration

	pressed    bool
	pressedAt  time.Time
	longFired  bool
	clicks     int
	releasedAt time.Time
	pending    []model.ButtonEvent
}

// NewClassifier returns a classifier for button. A hold of zero disables long
// clicks; a window of zero reports every click on its own.
func NewClassifier(button model.ButtonID, hold, window time.Duration) *Classifier {
	return &Classifier{button: button, hold: hold, window: window}
}

// Reset forgets a press in progress, a pending click burst and any events
// not yet returned by Poll.
func (c *Classifier) Reset() {
	*c = Classifier{button: c.button, hold: c.hold, window: c.window}
}

// Edge records a level change. Repeated levels are ignored.
func (c *Classifier) Edge(pressed bool, at time.Time) {
	if pressed == c.pressed {
		return
	}
	c.pressed = pressed

	if pressed {
		c.pressedAt = at
		c.longFired = false
		c.emit(model.EventPress, 0, at)
		return
	}

	if c.longFired {
		return
	}
	if c.hold > 0 && at.Sub(c.pressedAt) >= c.hold {
		c.fireLong(at)
		return
	}
	c.clicks++
	c.releasedAt = at
}

// Poll returns the events that are complete at now.
func (c *Classifier) Poll(now time.Time) []model.ButtonEvent {
	if c.pressed && !c.longFired && c.hold > 0 && now.Sub(c.pressedAt) >= c.hold {
		c.fireLong(c.pressedAt.Add(c.hold))
	}
	if !c.pressed && c.clicks > 0 && now.Sub(c.releasedAt) >= c.window {
		c.emit(model.EventClick, c.clicks, c.releasedAt)
		c.clicks = 0
	}

	out := c.pending
	c.pending = nil
	return out
}

func (c *Classifier) fireLong(at time.Time) {
	c.longFired = true
	c.emit(model.EventLongClick, c.clicks+1, at)
	c.clicks = 0
}

func (c *Classifier) emit(kind model.EventKind, clicks int, at time.Time) {
	c.pending = append(c.pending, model.ButtonEvent{
		Button: c.button,
		Kind:   kind,
		Clicks: clicks,
		At:     at,
	})
}
