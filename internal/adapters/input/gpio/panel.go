package gpio

import (
	"fmt"
	"speaker-remote/internal/domain/button"
	"speaker-remote/internal/domain/model"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	gpiod "github.com/warthog618/go-gpiocdev"
)

type Config struct {
	Chip      string
	Button1   int
	Button2   int
	ActiveLow bool
	Debounce  time.Duration
	Hold      time.Duration
	Window    time.Duration
}

type edge struct {
	button  model.ButtonID
	pressed bool
	at      time.Time
}

// Panel reads the two buttons from a GPIO character device. Line events are
// queued by the gpiocdev handler goroutine and classified inside Poll.
type Panel struct {
	cfg         Config
	chip        *gpiod.Chip
	lines       []*gpiod.Line
	edges       chan edge
	classifiers map[model.ButtonID]*button.Classifier

	mu      sync.Mutex
	wakers  map[model.ButtonID][]chan struct{}
	swallow map[model.ButtonID]bool
	reset   bool
}

func newPanel(cfg Config) *Panel {
	return &Panel{
		cfg:   cfg,
		edges: make(chan edge, 64),
		classifiers: map[model.ButtonID]*button.Classifier{
			model.Button1: button.NewClassifier(model.Button1, cfg.Hold, cfg.Window),
			model.Button2: button.NewClassifier(model.Button2, cfg.Hold, cfg.Window),
		},
		wakers:  make(map[model.ButtonID][]chan struct{}),
		swallow: make(map[model.ButtonID]bool),
	}
}

func Open(cfg Config) (*Panel, error) {
	p := newPanel(cfg)

	chip, err := gpiod.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", cfg.Chip, err)
	}
	p.chip = chip

	for id, offset := range map[model.ButtonID]int{model.Button1: cfg.Button1, model.Button2: cfg.Button2} {
		opts := []gpiod.LineReqOption{
			gpiod.AsInput,
			gpiod.WithBothEdges,
			gpiod.WithEventHandler(p.handler(id)),
		}
		if cfg.ActiveLow {
			opts = append(opts, gpiod.WithPullUp)
		}
		if cfg.Debounce > 0 {
			opts = append(opts, gpiod.WithDebounce(cfg.Debounce))
		}
		line, err := chip.RequestLine(offset, opts...)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request input pin %d: %w", offset, err)
		}
		p.lines = append(p.lines, line)
	}
	return p, nil
}

func (p *Panel) handler(id model.ButtonID) func(gpiod.LineEvent) {
	return func(evt gpiod.LineEvent) {
		p.onEdge(id, pressedFromEdge(evt.Type, p.cfg.ActiveLow), time.Now())
	}
}

// onEdge queues an edge. While a wake is armed every edge is dropped; the
// press that fires the wake is consumed together with its release.
func (p *Panel) onEdge(id model.ButtonID, pressed bool, at time.Time) {
	if p.consumeAsleep(id, pressed) {
		return
	}
	select {
	case p.edges <- edge{button: id, pressed: pressed, at: at}:
	default:
		log.WithField("button", id.String()).Warn("button edge queue full, dropping edge")
	}
}

// Poll drains queued edges and returns the events complete at now. The
// first Poll after a wake starts from released buttons.
func (p *Panel) Poll(now time.Time) []model.ButtonEvent {
	p.mu.Lock()
	reset := p.reset
	p.reset = false
	p.mu.Unlock()
	if reset {
		for _, c := range p.classifiers {
			c.Reset()
		}
	}

drain:
	for {
		select {
		case e := <-p.edges:
			p.classifiers[e.button].Edge(e.pressed, e.at)
		default:
			break drain
		}
	}

	var events []model.ButtonEvent
	events = append(events, p.classifiers[model.Button1].Poll(now)...)
	events = append(events, p.classifiers[model.Button2].Poll(now)...)
	return events
}

// ArmWake returns a channel closed on the next press of id.
func (p *Panel) ArmWake(id model.ButtonID) (<-chan struct{}, error) {
	ch := make(chan struct{})
	p.mu.Lock()
	p.wakers[id] = append(p.wakers[id], ch)
	p.mu.Unlock()
	return ch, nil
}

// Disarm drops the wakes armed on id without firing them, after another
// source woke the device. Queued input is discarded as on a wake.
func (p *Panel) Disarm(id model.ButtonID) {
	p.mu.Lock()
	delete(p.wakers, id)
	p.reset = true
	p.mu.Unlock()
	p.discardEdges()
}

func (p *Panel) consumeAsleep(id model.ButtonID, pressed bool) bool {
	p.mu.Lock()
	if !pressed && p.swallow[id] {
		delete(p.swallow, id)
		p.mu.Unlock()
		return true
	}
	if len(p.wakers) == 0 {
		p.mu.Unlock()
		return false
	}
	if !pressed {
		p.mu.Unlock()
		return true
	}
	p.swallow[id] = true
	waiting := p.wakers[id]
	if len(waiting) == 0 {
		p.mu.Unlock()
		return true
	}
	delete(p.wakers, id)
	p.reset = true
	p.mu.Unlock()

	p.discardEdges()
	for _, ch := range waiting {
		close(ch)
	}
	return true
}

func (p *Panel) discardEdges() {
	for {
		select {
		case <-p.edges:
		default:
			return
		}
	}
}

func (p *Panel) Close() error {
	var firstErr error
	for _, line := range p.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.lines = nil
	if p.chip != nil {
		if err := p.chip.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.chip = nil
	}
	return firstErr
}

func pressedFromEdge(evtType gpiod.LineEventType, activeLow bool) bool {
	if activeLow {
		return evtType == gpiod.LineEventFallingEdge
	}
	return evtType == gpiod.LineEventRisingEdge
}
