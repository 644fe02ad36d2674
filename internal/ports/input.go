package ports

import (
	"speaker-remote/internal/domain/model"
	"time"
)

// ButtonSource delivers classified button events. Poll is called once per
// loop iteration and must not block.
type ButtonSource interface {
	Poll(now time.Time) []model.ButtonEvent
}

type RemotePort interface {
	Snapshot() model.Snapshot
}
