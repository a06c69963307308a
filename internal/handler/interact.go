package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskdesk-dev/taskdesk/internal/gesture"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
	"github.com/taskdesk-dev/taskdesk/internal/utils"
)

const (
	interactCookie     = "interactId"
	gestureTTL         = 30 * time.Minute
	gestureSweepPeriod = 10 * time.Minute
)

// gestureEntry serializes event dispatch for one browser. Pointer events
// arrive as overlapping requests (a move fetch races the down and tick
// fetches), so every recognizer call happens under the entry lock.
type gestureEntry struct {
	mu      sync.Mutex
	rec     *gesture.Recognizer
	touched time.Time
}

// gestureRegistry keeps one recognizer per browser, dropped again once the
// browser goes quiet so the map does not grow with unique visitors.
type gestureRegistry struct {
	mu      sync.Mutex
	entries map[string]*gestureEntry
	ttl     time.Duration
}

func newGestureRegistry() *gestureRegistry {
	return &gestureRegistry{entries: make(map[string]*gestureEntry), ttl: gestureTTL}
}

func (g *gestureRegistry) get(id string) *gestureEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.entries[id]
	if !ok {
		entry = &gestureEntry{rec: gesture.NewRecognizer()}
		g.entries[id] = entry
	}
	entry.touched = time.Now()
	return entry
}

func (g *gestureRegistry) sweep() {
	cutoff := time.Now().Add(-g.ttl)

	g.mu.Lock()
	defer g.mu.Unlock()
	var dropped int
	for id, entry := range g.entries {
		if entry.touched.Before(cutoff) {
			delete(g.entries, id)
			dropped++
		}
	}
	if dropped > 0 {
		logger.Log.Debug("swept idle gesture recognizers", "count", dropped)
	}
}

// StartGestureSweeper periodically drops recognizers idle longer than the TTL.
func (h *Handler) StartGestureSweeper(ctx context.Context) {
	ticker := time.NewTicker(gestureSweepPeriod)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.gestures.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

type pointerEvent struct {
	Event  string  `json:"event" validate:"required,oneof=down move up cancel tick"`
	Row    int64   `json:"row"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Millis int64   `json:"millis" validate:"required"`
}

type gestureResponse struct {
	Action      string `json:"action"`
	RevealedRow *int64 `json:"revealedRow"`
}

// InteractPostHandler feeds one pointer event through the browser's
// recognizer. Timestamps come from the event itself, not the server clock, so
// delivery jitter cannot reorder the gesture.
func (h *Handler) InteractPostHandler(w http.ResponseWriter, r *http.Request) {
	var event pointerEvent
	if err := utils.DecodeValidate(r.Body, &event); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id := h.interactId(w, r)
	entry := h.gestures.get(id)

	now := time.UnixMilli(event.Millis)

	entry.mu.Lock()
	var action gesture.Action
	switch event.Event {
	case "down":
		action = entry.rec.Down(event.Row, event.X, event.Y, now)
	case "move":
		action = entry.rec.Move(event.X, event.Y, now)
	case "up":
		action = entry.rec.Up(now)
	case "cancel":
		action = entry.rec.Cancel(now)
	case "tick":
		action = entry.rec.Tick(now)
	}
	resp := gestureResponse{Action: actionName(action)}
	if row, ok := entry.rec.Revealed(); ok {
		resp.RevealedRow = &row
	}
	entry.mu.Unlock()

	writeJSON(w, resp)
}

func (h *Handler) interactId(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(interactCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     interactCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func actionName(a gesture.Action) string {
	switch a {
	case gesture.ActionOpen:
		return "open"
	case gesture.ActionReveal:
		return "reveal"
	case gesture.ActionDismiss:
		return "dismiss"
	}
	return "none"
}
