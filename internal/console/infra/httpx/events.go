package httpx

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jcmexdev/order-console/internal/console/core/monitor"
)

// OrderEvents streams the orders list as Server-Sent Events. The page
// only connects after rendering a fresh list, so the stream's monitor
// starts armed and its first fetch is the silent re-fetch one interval
// later. The monitor lives as long as the connection: each applied fetch
// is pushed as an "update" carrying the rendered list, and "done" follows
// once no order is pending or processing.
func (h *Handler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	m := monitor.New(h.orders, h.monitorOpts...)
	m.StartArmed(ctx)

	var buf bytes.Buffer
	for snap := range m.Updates() {
		if snap.Loading {
			continue
		}

		buf.Reset()
		if err := h.views.ordersFragment(&buf, ordersView{Snapshot: snap, PollEvery: h.pollEvery}); err != nil {
			slog.ErrorContext(ctx, "render orders fragment", "error", err)
			return
		}
		writeEvent(w, "update", buf.String())

		if !snap.Polling {
			writeEvent(w, "done", "")
			flusher.Flush()
			return
		}
		flusher.Flush()
	}
}

// writeEvent writes one SSE frame; every payload line gets its own data field.
func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
