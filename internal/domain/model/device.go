package model

import "time"

type ButtonID int

const (
	Button1 ButtonID = 1
	Button2 ButtonID = 2
)

func (b ButtonID) String() string {
	switch b {
	case Button1:
		return "button1"
	case Button2:
		return "button2"
	}
	return "unknown"
}

type EventKind string

const (
	EventPress     EventKind = "press"
	EventClick     EventKind = "click"
	EventLongClick EventKind = "long_click"
)

// ButtonEvent is an already classified input. Clicks is the burst size of a
// click event and 1 for long clicks.
type ButtonEvent struct {
	Button ButtonID
	Kind   EventKind
	Clicks int
	At     time.Time
}

type PowerPhase int

const (
	PhaseAwake PowerPhase = iota
	PhaseDimming
	PhaseFaded
)

func (p PowerPhase) String() string {
	switch p {
	case PhaseAwake:
		return "awake"
	case PhaseDimming:
		return "dimming"
	case PhaseFaded:
		return "faded"
	}
	return "unknown"
}

// DeviceState is mutated only by the control loop.
type DeviceState struct {
	SelectedRoom     int
	Phase            PowerPhase
	Button2PressedAt time.Time // zero when button 2 is up
}

// Snapshot is a read-only copy of the device state for status consumers.
type Snapshot struct {
	Room       string `json:"room"`
	Index      int    `json:"index"`
	RoomCount  int    `json:"room_count"`
	Templates  int    `json:"templates"`
	Phase      string `json:"phase"`
	Dispatched int    `json:"dispatched"`
}
