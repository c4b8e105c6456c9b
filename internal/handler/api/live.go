package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/canadapost"
	"github.com/dukerupert/addresscomplete/internal/middleware"
	"github.com/dukerupert/addresscomplete/internal/search"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

const (
	liveReadLimit  = 4 * 1024
	liveWriteWait  = 5 * time.Second
	livePingPeriod = 30 * time.Second
)

// Client message types.
const (
	LiveQuery            = "query"
	LiveSelect           = "select"
	LiveClearSelection   = "clear_selection"
	LiveClearSuggestions = "clear_suggestions"
)

// LiveRequest is a message from the browser. Text is set for "query",
// Index for "select".
type LiveRequest struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Index int    `json:"index,omitempty"`
}

// LiveMessage is a message to the browser: a "state" snapshot after every
// change, or an "error".
type LiveMessage struct {
	Type        string               `json:"type"`
	Suggestions []SuggestionResponse `json:"suggestions"`
	Loading     bool                 `json:"loading"`
	Selection   *SuggestionResponse  `json:"selection,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// LiveConfig contains the collaborators of a LiveHandler.
type LiveConfig struct {
	Provider canadapost.Provider
	Params   func(query string) canadapost.FindParams // Optional

	// AllowedOrigins lists browser origins allowed to connect. Empty means
	// same-origin only.
	AllowedOrigins []string

	// QueriesPerSecond and Burst throttle lookups per connection.
	QueriesPerSecond float64
	Burst            int

	Metrics *telemetry.Metrics // Optional
	Logger  *slog.Logger       // Optional
}

// LiveHandler runs one search.Controller per websocket connection and
// streams its state to the browser as it changes.
type LiveHandler struct {
	cfg      LiveConfig
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a live search handler.
func NewLiveHandler(cfg LiveConfig) *LiveHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueriesPerSecond <= 0 {
		cfg.QueriesPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	h := &LiveHandler{cfg: cfg}
	if len(cfg.AllowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(cfg.AllowedOrigins, "*") ||
				slices.Contains(cfg.AllowedOrigins, r.Header.Get("Origin"))
		}
	}
	return h
}

// Serve handles GET /api/addresses/live.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.cfg.Logger)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Info("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(liveReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ctrl, err := search.NewController(ctx, search.Config{
		Provider: h.cfg.Provider,
		Params:   h.cfg.Params,
		Logger:   logger,
		Metrics:  h.cfg.Metrics,
	})
	if err != nil {
		logger.Error("failed to start live search", "error", err)
		return
	}

	s := &liveSession{
		conn:    conn,
		ctrl:    ctrl,
		limiter: rate.NewLimiter(rate.Limit(h.cfg.QueriesPerSecond), h.cfg.Burst),
		dirty:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}

	for _, unsubscribe := range []func(){
		ctrl.Suggestions().Subscribe(func([]address.Address) { s.markDirty() }),
		ctrl.Loading().Subscribe(func(bool) { s.markDirty() }),
		ctrl.Selection().Subscribe(func(search.Selection) { s.markDirty() }),
	} {
		defer unsubscribe()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop()
	}()

	s.markDirty()
	s.readLoop()

	cancel()
	ctrl.Wait()
	close(s.done)
	wg.Wait()
}

type liveSession struct {
	conn    *websocket.Conn
	ctrl    *search.Controller
	limiter *rate.Limiter
	logger  *slog.Logger

	writeMu sync.Mutex
	dirty   chan struct{}
	done    chan struct{}
}

// markDirty schedules a state push. Bursts of changes collapse into one.
func (s *liveSession) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *liveSession) readLoop() {
	for {
		var req LiveRequest
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("live search connection closed", "error", err)
			}
			return
		}

		switch req.Type {
		case LiveQuery:
			if !s.limiter.Allow() {
				s.sendError("Too many requests. Please slow down.")
				continue
			}
			s.ctrl.OnQueryChanged(req.Text)
		case LiveSelect:
			list := s.ctrl.Suggestions().Get()
			if req.Index < 0 || req.Index >= len(list) {
				s.sendError("No suggestion at that position")
				continue
			}
			s.ctrl.OnSuggestionSelected(list[req.Index])
		case LiveClearSelection:
			s.ctrl.OnClearSelection()
		case LiveClearSuggestions:
			s.ctrl.OnClearSuggestions()
		default:
			s.sendError("Unknown message type: " + req.Type)
		}
	}
}

func (s *liveSession) writeLoop() {
	ping := time.NewTicker(livePingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-s.dirty:
			if err := s.write(s.snapshot()); err != nil {
				s.logger.Debug("live search write failed", "error", err)
				return
			}
		case <-ping.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *liveSession) snapshot() LiveMessage {
	state := s.ctrl.Snapshot()

	msg := LiveMessage{
		Type:        "state",
		Suggestions: make([]SuggestionResponse, 0, len(state.Suggestions)),
		Loading:     state.Loading,
	}
	for _, a := range state.Suggestions {
		msg.Suggestions = append(msg.Suggestions, newSuggestion("", a))
	}
	if state.Selection.Valid {
		sel := newSuggestion("", state.Selection.Address)
		msg.Selection = &sel
	}
	return msg
}

func (s *liveSession) sendError(message string) {
	if err := s.write(LiveMessage{Type: "error", Message: message}); err != nil {
		s.logger.Debug("live search write failed", "error", err)
	}
}

func (s *liveSession) write(msg LiveMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return s.conn.WriteJSON(msg)
}
