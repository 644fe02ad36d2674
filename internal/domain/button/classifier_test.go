package button

import (
	"speaker-remote/internal/domain/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func kinds(events []model.ButtonEvent) []model.EventKind {
	out := make([]model.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestClassifier_SingleClick(t *testing.T) {
	c := NewClassifier(model.Button1, 500*time.Millisecond, 250*time.Millisecond)

	c.Edge(true, at(0))
	c.Edge(false, at(80))
	assert.Equal(t, []model.EventKind{model.EventPress}, kinds(c.Poll(at(100))))

	// Still inside the multi-click window
	assert.Empty(t, c.Poll(at(200)))

	events := c.Poll(at(330))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventClick, events[0].Kind)
	assert.Equal(t, 1, events[0].Clicks)
	assert.Equal(t, at(80), events[0].At)
	assert.Equal(t, model.Button1, events[0].Button)
}

func TestClassifier_MultiClick(t *testing.T) {
	c := NewClassifier(model.Button2, 500*time.Millisecond, 250*time.Millisecond)

	c.Edge(true, at(0))
	c.Edge(false, at(50))
	c.Edge(true, at(150))
	c.Edge(false, at(200))
	c.Edge(true, at(300))
	c.Edge(false, at(350))

	events := c.Poll(at(700))
	require.Len(t, events, 4)
	assert.Equal(t, model.EventClick, events[3].Kind)
	assert.Equal(t, 3, events[3].Clicks)
}

func TestClassifier_LongClickWhileHeld(t *testing.T) {
	c := NewClassifier(model.Button2, 500*time.Millisecond, 250*time.Millisecond)

	c.Edge(true, at(0))
	assert.Equal(t, []model.EventKind{model.EventPress}, kinds(c.Poll(at(100))))

	events := c.Poll(at(600))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLongClick, events[0].Kind)
	assert.Equal(t, at(500), events[0].At)

	// Release after a long click produces nothing further
	c.Edge(false, at(900))
	assert.Empty(t, c.Poll(at(1500)))
}

func TestClassifier_LongClickOnRelease(t *testing.T) {
	c := NewClassifier(model.Button1, 500*time.Millisecond, 0)

	c.Edge(true, at(0))
	c.Edge(false, at(650))
	assert.Equal(t, []model.EventKind{model.EventPress, model.EventLongClick}, kinds(c.Poll(at(650))))
}

func TestClassifier_IgnoresRepeatedLevels(t *testing.T) {
	c := NewClassifier(model.Button1, 0, 0)

	c.Edge(false, at(0))
	c.Edge(true, at(10))
	c.Edge(true, at(20))
	c.Edge(false, at(30))

	events := c.Poll(at(30))
	assert.Equal(t, []model.EventKind{model.EventPress, model.EventClick}, kinds(events))
}

func TestClassifier_Reset(t *testing.T) {
	c := NewClassifier(model.Button2, 500*time.Millisecond, 200*time.Millisecond)

	c.Edge(true, at(0))
	c.Edge(false, at(50))
	c.Edge(true, at(100))
	c.Reset()

	// The release of a press made before the reset is not a click
	c.Edge(false, at(150))
	assert.Empty(t, c.Poll(at(2000)))

	c.Edge(true, at(3000))
	c.Edge(false, at(3050))
	assert.Equal(t, []model.EventKind{model.EventPress, model.EventClick}, kinds(c.Poll(at(3300))))
}
