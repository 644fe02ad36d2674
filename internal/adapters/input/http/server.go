package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/ports"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Server is a virtual button panel for hosts without GPIO buttons. It also
// exposes the remote's state.
type Server struct {
	remote ports.RemotePort
	events chan model.ButtonEvent
	now    func() time.Time

	mu      sync.Mutex
	wakers  map[model.ButtonID][]chan struct{}
	swallow map[model.ButtonID]bool
}

func NewServer() *Server {
	return &Server{
		events:  make(chan model.ButtonEvent, 64),
		now:     time.Now,
		wakers:  make(map[model.ButtonID][]chan struct{}),
		swallow: make(map[model.ButtonID]bool),
	}
}

// Attach sets the remote whose state is served on /state.
func (s *Server) Attach(remote ports.RemotePort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remote = remote
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/buttons/", s.handleButton)
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

// Poll returns the events queued since the last call.
func (s *Server) Poll(time.Time) []model.ButtonEvent {
	var events []model.ButtonEvent
	for {
		select {
		case ev := <-s.events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (s *Server) discardEvents() {
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

func (s *Server) ArmWake(id model.ButtonID) (<-chan struct{}, error) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.wakers[id] = append(s.wakers[id], ch)
	s.mu.Unlock()
	return ch, nil
}

// Disarm drops the wakes armed on id without firing them, after another
// source woke the device. Queued events are discarded as on a wake.
func (s *Server) Disarm(id model.ButtonID) {
	s.mu.Lock()
	delete(s.wakers, id)
	s.mu.Unlock()
	s.discardEvents()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Speaker Remote</title></head>
<body>
<h1 id="room">...</h1>
<button onclick="send('/buttons/1/click')">Next room</button>
<button onclick="send('/buttons/2/click')">Command</button>
<button onclick="send('/buttons/2/long')">Alternate command</button>
<script>
function send(path) { fetch(path, {method: 'POST'}).then(refresh); }
function refresh() {
  fetch('/state').then(r => r.json()).then(s => {
    document.getElementById('room').textContent = s.room || 'no rooms configured';
  });
}
refresh();
</script>
</body>
</html>`)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	remote := s.remote
	s.mu.Unlock()
	if remote == nil {
		http.Error(w, "remote not started", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(remote.Snapshot())
}

// handleButton serves POST /buttons/{1|2}/{click|long|press|release}.
func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/buttons/"), "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	var id model.ButtonID
	switch parts[0] {
	case "1":
		id = model.Button1
	case "2":
		id = model.Button2
	default:
		http.Error(w, "unknown button", http.StatusNotFound)
		return
	}

	now := s.now()
	switch parts[1] {
	case "click":
		count := 1
		if raw := r.URL.Query().Get("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "count must be a positive integer", http.StatusBadRequest)
				return
			}
			count = n
		}
		s.push(model.ButtonEvent{Button: id, Kind: model.EventPress, At: now})
		s.push(model.ButtonEvent{Button: id, Kind: model.EventClick, Clicks: count, At: now})
	case "long":
		s.push(model.ButtonEvent{Button: id, Kind: model.EventPress, At: now})
		s.push(model.ButtonEvent{Button: id, Kind: model.EventLongClick, Clicks: 1, At: now})
	case "press":
		s.push(model.ButtonEvent{Button: id, Kind: model.EventPress, At: now})
	case "release":
		s.push(model.ButtonEvent{Button: id, Kind: model.EventClick, Clicks: 1, At: now})
	default:
		http.Error(w, "unknown gesture", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// push queues ev. While a wake is armed every event is dropped; the gesture
// that fires the wake is consumed whole.
func (s *Server) push(ev model.ButtonEvent) {
	if s.consumeAsleep(ev.Button, ev.Kind == model.EventPress) {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Server) consumeAsleep(id model.ButtonID, pressed bool) bool {
	s.mu.Lock()
	if !pressed && s.swallow[id] {
		delete(s.swallow, id)
		s.mu.Unlock()
		return true
	}
	if len(s.wakers) == 0 {
		s.mu.Unlock()
		return false
	}
	if !pressed {
		s.mu.Unlock()
		return true
	}
	s.swallow[id] = true
	waiting := s.wakers[id]
	if len(waiting) == 0 {
		s.mu.Unlock()
		return true
	}
	delete(s.wakers, id)
	s.mu.Unlock()

	s.discardEvents()
	for _, ch := range waiting {
		close(ch)
	}
	return true
}
