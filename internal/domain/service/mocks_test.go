package service

import (
	"context"
	"speaker-remote/internal/domain/model"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockNetwork struct {
	mock.Mock
}

func (m *MockNetwork) EnsureConnected(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Get(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type MockStateRepo struct {
	mock.Mock
	log *callLog
}

func (m *MockStateRepo) Load(ctx context.Context) (int, bool, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockStateRepo) Save(ctx context.Context, index int) error {
	m.log.add("save")
	args := m.Called(ctx, index)
	return args.Error(0)
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(name string) int {
	n := 0
	for _, c := range l.all() {
		if c == name {
			n++
		}
	}
	return n
}

type fakeDisplay struct {
	log    *callLog
	labels []string
}

func (d *fakeDisplay) DrawCenteredLabel(text string) error {
	d.log.add("draw")
	d.labels = append(d.labels, text)
	return nil
}

func (d *fakeDisplay) Wait() { d.log.add("wait") }

type fakeBacklight struct {
	log *callLog
}

func (b *fakeBacklight) Wake() error             { b.log.add("backlight_wake"); return nil }
func (b *fakeBacklight) Dim(time.Duration) error { b.log.add("backlight_dim"); return nil }
func (b *fakeBacklight) Off() error              { b.log.add("backlight_off"); return nil }

type fakeSleeper struct {
	log   *callLog
	armed []model.ButtonID
}

func (s *fakeSleeper) ArmWakeSource(button model.ButtonID) error {
	s.log.add("arm")
	s.armed = append(s.armed, button)
	return nil
}

func (s *fakeSleeper) DeepSleep(context.Context) error {
	s.log.add("sleep")
	return nil
}

type fakePublisher struct {
	log   *callLog
	rooms []string
}

func (p *fakePublisher) Resume() error {
	p.log.add("publish_resume")
	return nil
}

func (p *fakePublisher) PublishRoom(_ int, name string) error {
	p.rooms = append(p.rooms, name)
	return nil
}

func (p *fakePublisher) PublishAsleep() error {
	p.log.add("publish_asleep")
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type scriptedButtons struct {
	batches [][]model.ButtonEvent
}

func (b *scriptedButtons) Push(events ...model.ButtonEvent) {
	b.batches = append(b.batches, events)
}

func (b *scriptedButtons) Poll(time.Time) []model.ButtonEvent {
	if len(b.batches) == 0 {
		return nil
	}
	out := b.batches[0]
	b.batches = b.batches[1:]
	return out
}

type staticLoader struct {
	dir *model.Directory
	err error
}

func (l staticLoader) Load(context.Context) (*model.Directory, error) {
	return l.dir, l.err
}
