package service

import (
	"context"
	"errors"
	"fmt"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/domain/selector"
	"speaker-remote/internal/ports"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrAsleep is returned by Step once the deep sleep sequence has run.
var ErrAsleep = errors.New("remote is asleep")

const DefaultEmptyLabel = "no rooms configured"

type DirectoryLoader interface {
	Load(ctx context.Context) (*model.Directory, error)
}

type Deps struct {
	Loader    DirectoryLoader
	Buttons   ports.ButtonSource
	Display   ports.Display
	Backlight ports.Backlight
	Network   ports.Network
	Client    ports.CommandClient
	State     ports.StateRepository
	Sleeper   ports.Sleeper
	Publisher ports.StatusPublisher
	Clock     ports.Clock
}

type Options struct {
	PollInterval  time.Duration
	IdleTimeout   time.Duration
	FadeDuration  time.Duration
	HoldThreshold time.Duration
	Placeholder   string
	MaxURLLength  int
	EmptyLabel    string
}

// Remote owns the directory and the device state and runs the control loop.
// Only the goroutine calling Boot, Step and Run touches the state; Snapshot
// may be called from anywhere.
type Remote struct {
	deps     Deps
	strategy selector.Strategy
	opts     Options

	dir        *model.Directory
	state      model.DeviceState
	power      *Lifecycle
	dispatcher *Dispatcher
	dispatched int

	mu       sync.RWMutex
	snapshot model.Snapshot
}

func NewRemote(deps Deps, strategy selector.Strategy, opts Options) *Remote {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if opts.EmptyLabel == "" {
		opts.EmptyLabel = DefaultEmptyLabel
	}
	return &Remote{
		deps:     deps,
		strategy: strategy,
		opts:     opts,
	}
}

// Boot loads the directory, restores the persisted room and draws it. Errors
// returned from Boot are fatal.
func (r *Remote) Boot(ctx context.Context) error {
	dir, err := r.deps.Loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}
	r.dir = dir
	r.dispatcher = NewDispatcher(dir, r.deps.Network, r.deps.Client, r.opts.Placeholder, r.opts.MaxURLLength)

	stored, found, err := r.deps.State.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("persisted state unreadable, starting at first room")
		stored, found = 0, false
	}
	r.state = model.DeviceState{
		SelectedRoom: model.ClampIndex(stored, dir.RoomCount()),
		Phase:        model.PhaseAwake,
	}
	if found && r.state.SelectedRoom != stored {
		log.WithFields(log.Fields{
			"stored": stored,
			"rooms":  dir.RoomCount(),
		}).Warn("persisted room out of range, using first room")
	}

	r.power = NewLifecycle(r.opts.IdleTimeout, r.opts.FadeDuration, r.deps.Clock.Now())
	if err := r.deps.Backlight.Wake(); err != nil {
		log.WithError(err).Warn("backlight wake failed")
	}
	r.render()
	if r.deps.Publisher != nil {
		if err := r.deps.Publisher.Resume(); err != nil {
			log.WithError(err).Warn("status publisher unavailable")
		}
	}
	r.publishRoom()
	r.updateSnapshot()

	log.WithFields(log.Fields{
		"index": r.state.SelectedRoom,
		"rooms": dir.RoomCount(),
	}).Info("remote booted")
	return nil
}

// Step polls the buttons once, applies the resulting events and advances the
// power lifecycle.
func (r *Remote) Step(ctx context.Context) error {
	if r.state.Phase == model.PhaseFaded {
		return ErrAsleep
	}

	for _, ev := range r.deps.Buttons.Poll(r.deps.Clock.Now()) {
		r.handle(ctx, ev)
	}

	switch r.power.Tick(r.deps.Clock.Now()) {
	case TransitionDimming:
		r.state.Phase = model.PhaseDimming
		log.WithFields(log.Fields{
			"fade":     r.opts.FadeDuration,
			"deadline": r.power.FadeDeadline().Format(time.RFC3339Nano),
		}).Debug("idle, dimming backlight")
		if err := r.deps.Backlight.Dim(r.opts.FadeDuration); err != nil {
			log.WithError(err).Warn("backlight dim failed")
		}
	case TransitionFaded:
		r.state.Phase = model.PhaseFaded
		r.updateSnapshot()
		r.sleep(ctx)
		return ErrAsleep
	}
	r.updateSnapshot()
	return nil
}

// Run pumps Step at the poll interval until the remote sleeps or ctx ends.
func (r *Remote) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := r.Step(ctx); err != nil {
			if errors.Is(err, ErrAsleep) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Remote) Snapshot() model.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Remote) handle(ctx context.Context, ev model.ButtonEvent) {
	if r.power.Activity(r.deps.Clock.Now()) {
		log.Debug("input during fade, backlight restored")
		if err := r.deps.Backlight.Wake(); err != nil {
			log.WithError(err).Warn("backlight wake failed")
		}
	}
	r.state.Phase = r.power.Phase()

	switch ev.Button {
	case model.Button1:
		// A long click on button 1 only wakes the display.
		if ev.Kind == model.EventClick {
			r.navigate(ev.Clicks)
		}
	case model.Button2:
		switch ev.Kind {
		case model.EventPress:
			r.state.Button2PressedAt = ev.At
		case model.EventClick:
			long := ev.Clicks <= 1 && r.heldLong(ev.At)
			r.state.Button2PressedAt = time.Time{}
			r.command(ctx, selector.Press{Clicks: ev.Clicks, Long: long})
		case model.EventLongClick:
			r.state.Button2PressedAt = time.Time{}
			r.command(ctx, selector.Press{Clicks: ev.Clicks, Long: true})
		}
	}
}

func (r *Remote) heldLong(releasedAt time.Time) bool {
	pressed := r.state.Button2PressedAt
	if pressed.IsZero() || r.opts.HoldThreshold <= 0 {
		return false
	}
	return releasedAt.Sub(pressed) >= r.opts.HoldThreshold
}

func (r *Remote) navigate(delta int) {
	count := r.dir.RoomCount()
	if count == 0 || delta <= 0 {
		return
	}
	next := Advance(r.state.SelectedRoom, count, delta)
	if next == r.state.SelectedRoom {
		return
	}
	r.state.SelectedRoom = next
	r.render()
	r.publishRoom()
}

func (r *Remote) command(ctx context.Context, p selector.Press) {
	if r.dir.RoomCount() == 0 {
		return
	}
	idx, ok := r.strategy.Select(p, r.dir.TemplateCount())
	if !ok {
		log.WithFields(log.Fields{
			"clicks": p.Clicks,
			"long":   p.Long,
		}).Info("no command template for press")
		return
	}

	url, err := r.dispatcher.Dispatch(ctx, r.state.SelectedRoom, idx)
	// The idle timer runs from the end of a blocking dispatch.
	r.power.Activity(r.deps.Clock.Now())
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"index":    r.state.SelectedRoom,
			"template": idx,
		}).Warn("command failed")
		return
	}
	r.dispatched++
	log.WithFields(log.Fields{
		"template": idx,
		"url":      url,
	}).Info("command sent")
}

func (r *Remote) render() {
	label := r.opts.EmptyLabel
	if name, ok := r.dir.Room(r.state.SelectedRoom); ok {
		label = name
	}
	r.deps.Display.Wait()
	if err := r.deps.Display.DrawCenteredLabel(label); err != nil {
		log.WithError(err).WithField("label", label).Warn("draw failed")
	}
}

// sleep runs the fixed shutdown order: backlight off, flush the display,
// persist, arm the wake source, then sleep.
func (r *Remote) sleep(ctx context.Context) {
	log.WithField("index", r.state.SelectedRoom).Info("display faded, entering deep sleep")

	if err := r.deps.Backlight.Off(); err != nil {
		log.WithError(err).Warn("backlight off failed")
	}
	r.deps.Display.Wait()

	if err := r.deps.State.Save(ctx, r.state.SelectedRoom); err != nil {
		log.WithError(err).Error("persisting selected room failed")
	}
	if r.deps.Publisher != nil {
		if err := r.deps.Publisher.PublishAsleep(); err != nil {
			log.WithError(err).Debug("status publish failed")
		}
	}
	if err := r.deps.Sleeper.ArmWakeSource(model.Button1); err != nil {
		log.WithError(err).Error("arming wake source failed")
	}
	if err := r.deps.Sleeper.DeepSleep(ctx); err != nil {
		log.WithError(err).Error("deep sleep failed")
	}
}

func (r *Remote) publishRoom() {
	if r.deps.Publisher == nil {
		return
	}
	name, _ := r.dir.Room(r.state.SelectedRoom)
	if err := r.deps.Publisher.PublishRoom(r.state.SelectedRoom, name); err != nil {
		log.WithError(err).Debug("status publish failed")
	}
}

func (r *Remote) updateSnapshot() {
	name, _ := r.dir.Room(r.state.SelectedRoom)
	snap := model.Snapshot{
		Room:       name,
		Index:      r.state.SelectedRoom,
		RoomCount:  r.dir.RoomCount(),
		Templates:  r.dir.TemplateCount(),
		Phase:      r.state.Phase.String(),
		Dispatched: r.dispatched,
	}
	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
