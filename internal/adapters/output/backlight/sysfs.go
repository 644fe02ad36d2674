package backlight

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const fadeSteps = 32

// Sysfs drives a /sys/class/backlight device. Dim fades in the background
// and is cancelled by Wake or Off.
type Sysfs struct {
	dir      string
	maxLevel int

	mu     sync.Mutex
	cancel chan struct{}
	done   chan struct{}
}

func NewSysfs(dir string) (*Sysfs, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("backlight: %w", err)
	}
	level, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("backlight: max_brightness: %w", err)
	}
	return &Sysfs{dir: dir, maxLevel: level}, nil
}

func (b *Sysfs) Wake() error {
	b.stopFade()
	return b.set(b.maxLevel)
}

func (b *Sysfs) Off() error {
	b.stopFade()
	return b.set(0)
}

func (b *Sysfs) Dim(over time.Duration) error {
	b.stopFade()
	if over <= 0 {
		return b.set(0)
	}

	cancel := make(chan struct{})
	done := make(chan struct{})
	b.mu.Lock()
	b.cancel, b.done = cancel, done
	b.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(max(over/fadeSteps, time.Millisecond))
		defer ticker.Stop()
		for step := fadeSteps - 1; step >= 0; step-- {
			select {
			case <-cancel:
				return
			case <-ticker.C:
			}
			if err := b.set(b.maxLevel * step / fadeSteps); err != nil {
				log.WithError(err).Warn("backlight fade step failed")
				return
			}
		}
	}()
	return nil
}

func (b *Sysfs) brightness() (int, error) {
	raw, err := os.ReadFile(filepath.Join(b.dir, "brightness"))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

func (b *Sysfs) stopFade() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()
	if cancel != nil {
		close(cancel)
		<-done
	}
}

func (b *Sysfs) set(level int) error {
	return os.WriteFile(filepath.Join(b.dir, "brightness"), []byte(strconv.Itoa(level)), 0644)
}

// Noop is used when the panel has no controllable backlight.
type Noop struct{}

func (Noop) Wake() error             { return nil }
func (Noop) Dim(time.Duration) error { return nil }
func (Noop) Off() error              { return nil }
