package service

import (
	"context"
	"errors"
	"fmt"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/ports"
	"strings"
)

var (
	ErrMissingPlaceholder = errors.New("template has no room placeholder")
	ErrURLTooLong         = errors.New("command url exceeds maximum length")
	ErrUnknownRoom        = errors.New("unknown room")
	ErrUnknownTemplate    = errors.New("unknown command template")
)

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

// EncodeRoom percent-encodes every byte outside [A-Za-z0-9-._~].
func EncodeRoom(name string) string {
	var b strings.Builder
	b.Grow(len(name) * 3)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// ExpandTemplate replaces the first placeholder in tmpl with encoded. Results
// longer than maxLen are rejected; maxLen <= 0 disables the check.
func ExpandTemplate(tmpl, placeholder, encoded string, maxLen int) (string, error) {
	if placeholder == "" || !strings.Contains(tmpl, placeholder) {
		return "", fmt.Errorf("%w: %q", ErrMissingPlaceholder, tmpl)
	}
	url := strings.Replace(tmpl, placeholder, encoded, 1)
	if maxLen > 0 && len(url) > maxLen {
		return "", fmt.Errorf("%w: %d > %d", ErrURLTooLong, len(url), maxLen)
	}
	return url, nil
}

type Dispatcher struct {
	dir         *model.Directory
	network     ports.Network
	client      ports.CommandClient
	placeholder string
	maxLen      int
}

func NewDispatcher(dir *model.Directory, network ports.Network, client ports.CommandClient, placeholder string, maxLen int) *Dispatcher {
	return &Dispatcher{
		dir:         dir,
		network:     network,
		client:      client,
		placeholder: placeholder,
		maxLen:      maxLen,
	}
}

// Resolve builds the command URL for a room and template.
func (d *Dispatcher) Resolve(roomIndex, templateIndex int) (string, error) {
	room, ok := d.dir.Room(roomIndex)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownRoom, roomIndex)
	}
	tmpl, ok := d.dir.Template(templateIndex)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownTemplate, templateIndex)
	}
	return ExpandTemplate(tmpl, d.placeholder, EncodeRoom(room), d.maxLen)
}

// Dispatch resolves the URL, makes sure the network is up and issues a single
// GET. It returns the URL that was requested.
func (d *Dispatcher) Dispatch(ctx context.Context, roomIndex, templateIndex int) (string, error) {
	url, err := d.Resolve(roomIndex, templateIndex)
	if err != nil {
		return "", err
	}
	if err := d.network.EnsureConnected(ctx); err != nil {
		return url, fmt.Errorf("network: %w", err)
	}
	if err := d.client.Get(ctx, url); err != nil {
		return url, fmt.Errorf("get %s: %w", url, err)
	}
	return url, nil
}
