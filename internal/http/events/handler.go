// Package events streams storage-change notifications to browser tabs as
// Server-Sent Events. Each event names the storage key that changed; the
// client re-pulls whatever it derives from that collection, mirroring the
// "something changed, re-pull" contract of the in-process broadcaster.
package events

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/notify"
)

type Handler struct {
	changes *notify.Broadcaster
	logger  *zap.Logger
}

func NewHandler(changes *notify.Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{changes: changes, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.stream)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Buffered so a slow client drops notifications instead of blocking
	// the writer; the client re-pulls full state anyway.
	keys := make(chan string, 16)

	unsubscribe := h.changes.SubscribeAll(func(key string) {
		select {
		case keys <- key:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case key := <-keys:
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", key); err != nil {
				h.logger.Debug("event stream closed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}
