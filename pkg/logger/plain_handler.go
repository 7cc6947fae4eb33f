package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// metaKeys are attributes kept out of console lines; the file handler
// still records them.
var metaKeys = map[string]bool{
	"time":      true,
	"level":     true,
	"msg":       true,
	"component": true,
}

// plainHandler is a minimal slog.Handler that prints only the message and
// key=value pairs, without time/level decorations. Intended for clean
// console output.
type plainHandler struct {
	w       io.Writer
	attrs   []slog.Attr
	mu      sync.Mutex
	leveler slog.Leveler
}

func newPlainHandler(w io.Writer, leveler slog.Leveler) slog.Handler {
	return &plainHandler{w: w, leveler: leveler}
}

func (h *plainHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	if h.leveler == nil {
		return true
	}
	return lvl >= h.leveler.Level()
}

func (h *plainHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := r.Message
	appendAttr := func(a slog.Attr) {
		if metaKeys[a.Key] {
			return
		}
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}

	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *plainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := &plainHandler{w: h.w, leveler: h.leveler}
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return nh
}

func (h *plainHandler) WithGroup(_ string) slog.Handler {
	// Groups are not rendered on the console; the file handler keeps them.
	return h
}
