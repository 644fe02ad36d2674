package ports

import (
	"context"
	"speaker-remote/internal/domain/model"
	"time"
)

type Display interface {
	// DrawCenteredLabel may return before the frame reaches the panel.
	DrawCenteredLabel(text string) error
	// Wait blocks until the pending draw, if any, has completed.
	Wait()
}

type Backlight interface {
	Wake() error
	Dim(over time.Duration) error
	Off() error
}

type Network interface {
	EnsureConnected(ctx context.Context) error
}

type Sleeper interface {
	ArmWakeSource(button model.ButtonID) error
	DeepSleep(ctx context.Context) error
}

// StatusPublisher mirrors the remote's state. Resume reopens a publisher
// closed by PublishAsleep.
type StatusPublisher interface {
	PublishRoom(index int, name string) error
	PublishAsleep() error
	Resume() error
}

type Clock interface {
	Now() time.Time
}
