package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cardduel/internal/app"
)

const (
	writeWait      = 10 * time.Second
	subscriberBuf  = 64
	pingInterval   = 30 * time.Second
	maxClientFrame = 512
)

// Message is one frame of the event stream.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// hub fans match events out to the websocket subscribers of each owner.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Message]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan Message]struct{})}
}

func (h *hub) subscribe(owner string) chan Message {
	ch := make(chan Message, subscriberBuf)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[chan Message]struct{})
	}
	h.subs[owner][ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(owner string, ch chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[owner]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, owner)
		}
	}
}

// publish never blocks; a subscriber whose buffer is full misses the
// message and can resync with GET /matches/{owner}.
func (h *hub) publish(owner string, msgs ...Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[owner] {
		for _, m := range msgs {
			select {
			case ch <- m:
			default:
			}
		}
	}
}

func (h *hub) publishEvents(owner string, events []app.Event) {
	msgs := make([]Message, 0, len(events))
	for _, ev := range visibleTo(owner, events) {
		msgs = append(msgs, Message{Type: string(ev.Kind), Data: ev.Payload})
	}
	if len(msgs) > 0 {
		h.publish(owner, msgs...)
	}
}

// visibleTo drops events addressed to someone other than owner.
func visibleTo(owner string, events []app.Event) []app.Event {
	out := make([]app.Event, 0, len(events))
	for _, ev := range events {
		if len(ev.Recipients) == 0 {
			out = append(out, ev)
			continue
		}
		for _, r := range ev.Recipients {
			if r == owner {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleEvents streams the owner's match events over a websocket. The
// first frame is the current view when a match exists.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.authorize(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("owner", owner), zap.Error(err))
		return
	}
	ch := s.hub.subscribe(owner)
	s.logger.Info("event stream opened", zap.String("owner", owner), zap.String("remote", r.RemoteAddr))

	if view, err := s.currentView(r.Context(), owner); err == nil {
		ch <- Message{Type: "state", Data: view}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxClientFrame)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.hub.unsubscribe(owner, ch)
		_ = conn.Close()
		s.logger.Info("event stream closed", zap.String("owner", owner))
	}()
	for {
		select {
		case m := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				s.logger.Warn("websocket write failed", zap.String("owner", owner), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
