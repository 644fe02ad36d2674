package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	panelhttp "speaker-remote/internal/adapters/input/http"
	"speaker-remote/internal/adapters/output/backlight"
	"speaker-remote/internal/adapters/output/network"
	"speaker-remote/internal/adapters/output/persistence"
	"speaker-remote/internal/adapters/output/sleep"
	"speaker-remote/internal/adapters/output/speakerapi"
	"speaker-remote/internal/config"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/domain/selector"
	"speaker-remote/internal/domain/service"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	events   []model.ButtonEvent
	wake     chan struct{}
	armErr   error
	disarmed []model.ButtonID
}

func (s *fakeSource) Poll(time.Time) []model.ButtonEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

func (s *fakeSource) ArmWake(model.ButtonID) (<-chan struct{}, error) {
	if s.armErr != nil {
		return nil, s.armErr
	}
	s.wake = make(chan struct{})
	return s.wake, nil
}

func (s *fakeSource) Disarm(id model.ButtonID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmed = append(s.disarmed, id)
}

func (s *fakeSource) disarmedIDs() []model.ButtonID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ButtonID(nil), s.disarmed...)
}

func TestInputs_PollMergesSources(t *testing.T) {
	now := time.Now()
	gpio := &fakeSource{events: []model.ButtonEvent{{Button: model.Button1, Kind: model.EventClick, Clicks: 1, At: now}}}
	panel := &fakeSource{events: []model.ButtonEvent{{Button: model.Button2, Kind: model.EventLongClick, Clicks: 1, At: now}}}

	events := inputs{gpio, panel}.Poll(now)
	require.Len(t, events, 2)
	assert.Equal(t, model.Button1, events[0].Button)
	assert.Equal(t, model.Button2, events[1].Button)
	assert.Empty(t, inputs{gpio, panel}.Poll(now))
}

func TestInputs_ArmWakeDisarmsTheOtherSources(t *testing.T) {
	gpio, panel := &fakeSource{}, &fakeSource{}
	wake, err := inputs{gpio, panel}.ArmWake(model.Button1)
	require.NoError(t, err)

	close(panel.wake)
	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("wake did not fire")
	}
	assert.Equal(t, []model.ButtonID{model.Button1}, gpio.disarmedIDs())
	assert.Empty(t, panel.disarmedIDs())
}

func TestInputs_ArmWakeFailureDisarmsArmedSources(t *testing.T) {
	gpio := &fakeSource{}
	panel := &fakeSource{armErr: errors.New("closed")}

	_, err := inputs{gpio, panel}.ArmWake(model.Button1)
	assert.Error(t, err)
	assert.Equal(t, []model.ButtonID{model.Button1}, gpio.disarmedIDs())

	_, err = inputs{}.ArmWake(model.Button1)
	assert.Error(t, err)
}

type labelRecorder struct {
	mu     sync.Mutex
	labels []string
}

func (r *labelRecorder) DrawCenteredLabel(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, text)
	return nil
}

func (r *labelRecorder) Wait() {}

func (r *labelRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.labels...)
}

// armSignal reports every time the remote has armed its wake source.
type armSignal struct {
	*sleep.Sleeper
	armed chan struct{}
}

func (s *armSignal) ArmWakeSource(button model.ButtonID) error {
	err := s.Sleeper.ArmWakeSource(button)
	s.armed <- struct{}{}
	return err
}

func waitArmed(t *testing.T, armed <-chan struct{}) {
	t.Helper()
	select {
	case <-armed:
	case <-time.After(5 * time.Second):
		t.Fatal("remote never went to sleep")
	}
}

func TestLoop_ResumesSavedRoomAfterWake(t *testing.T) {
	var requests atomic.Int32
	speakers := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer speakers.Close()

	cfg := config.Default()
	cfg.Paths.FlashDir = t.TempDir()
	cfg.Timing.PollInterval = time.Millisecond
	cfg.Timing.IdleTimeout = 50 * time.Millisecond
	cfg.Timing.FadeDuration = 20 * time.Millisecond
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.FlashDir, cfg.Paths.RoomsFile), []byte("Kitchen,Living Room,Office,,"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.FlashDir, cfg.Paths.CommandsFile), []byte(speakers.URL+"/%s/play\n"), 0644))

	store, loader := newLoader(cfg)
	state := persistence.NewBinaryStateRepository(store.Path(cfg.Paths.StateFile))
	panel := panelhttp.NewServer()
	screen := &labelRecorder{}
	sleeper := &armSignal{
		Sleeper: sleep.New(inputs{panel}, sleep.ModeRestart, ""),
		armed:   make(chan struct{}, 4),
	}
	factory, err := selector.NewFactory("")
	require.NoError(t, err)

	a := &app{
		cfg:      cfg,
		store:    store,
		loader:   loader,
		strategy: factory.GetStrategy(selector.PolicyAuto),
		panel:    panel,
		deps: service.Deps{
			Loader:    loader,
			Buttons:   inputs{panel},
			Display:   screen,
			Backlight: backlight.Noop{},
			Network:   network.NewLink("wlan0", model.Credentials{}, network.Static{}),
			Client:    speakerapi.NewClient(time.Second),
			State:     state,
			Sleeper:   sleeper,
			Clock:     service.SystemClock{},
		},
	}

	press := func(path string) {
		rec := httptest.NewRecorder()
		panel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	// Two clicks on button 1 select the third room before the first sleep
	press("/buttons/1/click")
	press("/buttons/1/click")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.loop(ctx)
	}()

	waitArmed(t, sleeper.armed)
	idx, found, err := state.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, idx)

	// Button 2 while asleep must not dispatch after the wake
	press("/buttons/2/click")
	press("/buttons/1/click")

	waitArmed(t, sleeper.armed)
	assert.Equal(t, []string{"Kitchen", "Living Room", "Office", "Office"}, screen.all())
	assert.Equal(t, int32(0), requests.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}
