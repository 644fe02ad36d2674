package sleep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"speaker-remote/internal/domain/model"

	log "github.com/sirupsen/logrus"
)

type Mode string

const (
	// ModeRestart halts the control loop until the wake button is pressed.
	// The caller then boots a fresh controller from persisted state.
	ModeRestart Mode = "restart"
	// ModeSuspend additionally suspends the board to RAM.
	ModeSuspend Mode = "suspend"
)

const DefaultPowerState = "/sys/power/state"

var ErrNotArmed = errors.New("sleep: no wake source armed")

// WakeArmer notifies once when button is next pressed.
type WakeArmer interface {
	ArmWake(button model.ButtonID) (<-chan struct{}, error)
}

type Sleeper struct {
	armer      WakeArmer
	mode       Mode
	powerState string
	wakeup     string

	wake <-chan struct{}
}

// New returns a sleeper. In suspend mode wakeup names the power/wakeup
// attribute of the device behind the wake button, for example
// /sys/devices/platform/gpio-keys/power/wakeup; it is enabled before each
// suspend. Without it the board may not resume on the button.
func New(armer WakeArmer, mode Mode, wakeup string) *Sleeper {
	return &Sleeper{
		armer:      armer,
		mode:       mode,
		powerState: DefaultPowerState,
		wakeup:     wakeup,
	}
}

func (s *Sleeper) ArmWakeSource(button model.ButtonID) error {
	wake, err := s.armer.ArmWake(button)
	if err != nil {
		return fmt.Errorf("arm %s: %w", button, err)
	}
	s.wake = wake
	log.WithField("button", button.String()).Debug("wake source armed")
	return nil
}

// DeepSleep blocks until the armed wake source fires or ctx ends.
func (s *Sleeper) DeepSleep(ctx context.Context) error {
	if s.wake == nil {
		return ErrNotArmed
	}
	wake := s.wake
	s.wake = nil

	if s.mode == ModeSuspend {
		if s.wakeup != "" {
			if err := os.WriteFile(s.wakeup, []byte("enabled"), 0644); err != nil {
				return fmt.Errorf("enable wakeup: %w", err)
			}
		} else {
			log.Warn("no wakeup attribute configured, the button may not resume the board")
		}
		log.Info("suspending to RAM")
		if err := os.WriteFile(s.powerState, []byte("mem"), 0644); err != nil {
			return fmt.Errorf("suspend: %w", err)
		}
	}

	select {
	case <-wake:
		log.Info("woken by button")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
