package main

import (
	"context"
	"fmt"
	"io"
	"speaker-remote/internal/adapters/input/gpio"
	panelhttp "speaker-remote/internal/adapters/input/http"
	"speaker-remote/internal/adapters/output/backlight"
	"speaker-remote/internal/adapters/output/display"
	"speaker-remote/internal/adapters/output/mqtt"
	"speaker-remote/internal/adapters/output/network"
	"speaker-remote/internal/adapters/output/persistence"
	"speaker-remote/internal/adapters/output/sleep"
	"speaker-remote/internal/adapters/output/speakerapi"
	"speaker-remote/internal/config"
	"speaker-remote/internal/domain/directory"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/domain/selector"
	"speaker-remote/internal/domain/service"
	"speaker-remote/internal/ports"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type buttonInput interface {
	ports.ButtonSource
	sleep.WakeArmer
	Disarm(id model.ButtonID)
}

// inputs merges several button sources. A wake armed on it fires on the
// first source that sees the press; the others are disarmed.
type inputs []buttonInput

func (in inputs) Poll(now time.Time) []model.ButtonEvent {
	var events []model.ButtonEvent
	for _, src := range in {
		events = append(events, src.Poll(now)...)
	}
	return events
}

func (in inputs) ArmWake(id model.ButtonID) (<-chan struct{}, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("no button input for %s", id)
	}
	chans := make([]<-chan struct{}, len(in))
	for i, src := range in {
		ch, err := src.ArmWake(id)
		if err != nil {
			for _, armed := range in[:i] {
				armed.Disarm(id)
			}
			return nil, err
		}
		chans[i] = ch
	}

	out := make(chan struct{})
	var once sync.Once
	for i, ch := range chans {
		go func(fired int, ch <-chan struct{}) {
			select {
			case <-ch:
				once.Do(func() {
					for j, src := range in {
						if j != fired {
							src.Disarm(id)
						}
					}
					close(out)
				})
			case <-out:
			}
		}(i, ch)
	}
	return out, nil
}

type app struct {
	cfg      *config.Config
	store    *persistence.FlashStore
	loader   *directory.Loader
	deps     service.Deps
	strategy selector.Strategy
	panel    *panelhttp.Server
	closers  []io.Closer
}

func newLoader(cfg *config.Config) (*persistence.FlashStore, *directory.Loader) {
	store := persistence.NewFlashStore(cfg.Paths.FlashDir)
	loader := directory.NewLoader(store, directory.Files{
		Rooms:       cfg.Paths.RoomsFile,
		Commands:    cfg.Paths.CommandsFile,
		Credentials: cfg.Paths.CredentialsFile,
	}, cfg.Dispatch.Placeholder, cfg.Paths.MaxSourceBytes)
	return store, loader
}

func newLink(ctx context.Context, cfg *config.Config, loader *directory.Loader) (*network.Link, error) {
	creds, err := loader.LoadCredentials(ctx)
	if err != nil {
		return nil, err
	}
	var manager network.Manager = network.Static{}
	if cfg.Network.Managed {
		nm, err := network.NewNetworkManager(cfg.Network.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		manager = nm
	}
	return network.NewLink(cfg.Network.Interface, creds, manager), nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	a.store, a.loader = newLoader(cfg)

	factory, err := selector.NewFactory(cfg.Dispatch.Expression)
	if err != nil {
		return nil, err
	}
	a.strategy = factory.GetStrategy(selector.Policy(cfg.Dispatch.Selection))

	link, err := newLink(ctx, cfg, a.loader)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	var state ports.StateRepository
	switch cfg.Paths.StateBackend {
	case "badger":
		repo, err := persistence.NewBadgerStateRepository(persistence.BadgerOptions{Dir: a.store.Path("state.db")})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo)
		state = repo
	default:
		state = persistence.NewBinaryStateRepository(a.store.Path(cfg.Paths.StateFile))
	}

	var buttons inputs
	if cfg.Buttons.Chip != "" {
		panel, err := gpio.Open(gpio.Config{
			Chip:      cfg.Buttons.Chip,
			Button1:   cfg.Buttons.Button1,
			Button2:   cfg.Buttons.Button2,
			ActiveLow: cfg.Buttons.ActiveLow,
			Debounce:  cfg.Buttons.Debounce,
			Hold:      cfg.Timing.HoldThreshold,
			Window:    cfg.Timing.MultiClickWindow,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("buttons: %w", err)
		}
		a.closers = append(a.closers, panel)
		buttons = append(buttons, panel)
	}
	if cfg.PanelAddr != "" {
		a.panel = panelhttp.NewServer()
		buttons = append(buttons, a.panel)
		go func() {
			log.WithField("addr", cfg.PanelAddr).Info("virtual panel listening")
			if err := a.panel.ListenAndServe(cfg.PanelAddr); err != nil {
				log.WithError(err).Error("virtual panel stopped")
			}
		}()
	}
	if len(buttons) == 0 {
		a.Close()
		return nil, fmt.Errorf("no button input configured")
	}

	var screen ports.Display = display.New(display.Discard, cfg.Display.Width, cfg.Display.Height)
	if cfg.Display.Framebuffer != "" {
		fb, err := display.Open(cfg.Display.Framebuffer, cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("display: %w", err)
		}
		a.closers = append(a.closers, fb)
		screen = fb
	}

	var light ports.Backlight = backlight.Noop{}
	if cfg.Backlight != "" {
		sysfs, err := backlight.NewSysfs(cfg.Backlight)
		if err != nil {
			log.WithError(err).Warn("backlight unavailable")
		} else {
			light = sysfs
		}
	}

	var publisher ports.StatusPublisher
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.Connect(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
		})
		if err != nil {
			log.WithError(err).Warn("status publishing disabled")
		} else {
			publisher = p
		}
	}

	a.deps = service.Deps{
		Loader:    a.loader,
		Buttons:   buttons,
		Display:   screen,
		Backlight: light,
		Network:   link,
		Client:    speakerapi.NewClient(cfg.Dispatch.HTTPTimeout),
		State:     state,
		Sleeper:   sleep.New(buttons, sleep.Mode(cfg.SleepMode), cfg.SleepWakeup),
		Publisher: publisher,
		Clock:     service.SystemClock{},
	}
	return a, nil
}

func (a *app) options() service.Options {
	return service.Options{
		PollInterval:  a.cfg.Timing.PollInterval,
		IdleTimeout:   a.cfg.Timing.IdleTimeout,
		FadeDuration:  a.cfg.Timing.FadeDuration,
		HoldThreshold: a.cfg.Timing.HoldThreshold,
		Placeholder:   a.cfg.Dispatch.Placeholder,
		MaxURLLength:  a.cfg.Dispatch.MaxURLLength,
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}
