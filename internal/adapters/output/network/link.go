package network

import (
	"context"
	"errors"
	"fmt"
	"speaker-remote/internal/domain/model"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrNoCredentials = errors.New("no network credentials configured")

// Manager is the system service that owns the wireless interface.
type Manager interface {
	Connected(ctx context.Context) (bool, error)
	Connect(ctx context.Context, iface string, creds model.Credentials) error
}

// Link associates the wireless interface on demand. EnsureConnected makes a
// connection attempt only when the manager reports the link down.
type Link struct {
	iface   string
	creds   model.Credentials
	manager Manager

	mu       sync.Mutex
	attempts int
}

func NewLink(iface string, creds model.Credentials, manager Manager) *Link {
	return &Link{
		iface:   iface,
		creds:   creds,
		manager: manager,
	}
}

func (l *Link) EnsureConnected(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	up, err := l.manager.Connected(ctx)
	if err != nil {
		log.WithError(err).Debug("link state unknown, reconnecting")
	}
	if up {
		return nil
	}
	if l.creds.Empty() {
		return ErrNoCredentials
	}

	l.attempts++
	log.WithFields(log.Fields{
		"iface":   l.iface,
		"ssid":    l.creds.SSID,
		"attempt": l.attempts,
	}).Info("connecting to network")
	if err := l.manager.Connect(ctx, l.iface, l.creds); err != nil {
		return fmt.Errorf("connect %s to %s: %w", l.iface, l.creds.SSID, err)
	}
	return nil
}

// Attempts returns the number of connection attempts made so far.
func (l *Link) Attempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts
}

// Static is a Manager for hosts whose network is managed elsewhere.
type Static struct{}

func (Static) Connected(context.Context) (bool, error) { return true, nil }

func (Static) Connect(context.Context, string, model.Credentials) error { return nil }
