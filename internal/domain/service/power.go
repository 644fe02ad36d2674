package service

import (
	"speaker-remote/internal/domain/model"
	"time"
)

type Transition int

const (
	TransitionNone Transition = iota
	TransitionDimming
	TransitionFaded
)

// Lifecycle tracks the idle timer and the fade deadline. All times must come
// from the same monotonic clock.
type Lifecycle struct {
	idleTimeout  time.Duration
	fadeDuration time.Duration

	phase        model.PowerPhase
	lastActivity time.Time
	fadeDeadline time.Time
}

func NewLifecycle(idleTimeout, fadeDuration time.Duration, now time.Time) *Lifecycle {
	return &Lifecycle{
		idleTimeout:  idleTimeout,
		fadeDuration: fadeDuration,
		phase:        model.PhaseAwake,
		lastActivity: now,
	}
}

func (l *Lifecycle) Phase() model.PowerPhase {
	return l.phase
}

func (l *Lifecycle) FadeDeadline() time.Time {
	return l.fadeDeadline
}

// Activity restarts the idle timer. It reports whether a fade was cancelled.
// Once faded the lifecycle ignores activity.
func (l *Lifecycle) Activity(now time.Time) bool {
	if l.phase == model.PhaseFaded {
		return false
	}
	cancelled := l.phase == model.PhaseDimming
	l.phase = model.PhaseAwake
	l.lastActivity = now
	l.fadeDeadline = time.Time{}
	return cancelled
}

// Tick advances the state machine. Each transition is reported exactly once.
func (l *Lifecycle) Tick(now time.Time) Transition {
	switch l.phase {
	case model.PhaseAwake:
		if now.Sub(l.lastActivity) >= l.idleTimeout {
			l.phase = model.PhaseDimming
			l.fadeDeadline = now.Add(l.fadeDuration)
			return TransitionDimming
		}
	case model.PhaseDimming:
		if !now.Before(l.fadeDeadline) {
			l.phase = model.PhaseFaded
			return TransitionFaded
		}
	}
	return TransitionNone
}
