/*
 * rv64sim - Structured logging for the execution engines.
 *
 * Copyright (c) 2024
 *
 * Permission is hereby granted, free of charge, to any person obtaining a
 * copy of this software and associated documentation files (the "Software"),
 * to deal in the Software without restriction, including without limitation
 * the rights to use, copy, modify, merge, publish, distribute, sublicense,
 * and/or sell copies of the Software, and to permit persons to whom the
 * Software is furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package rvlog wraps log/slog with a mutex-guarded handler, so the three
// execution engines can share one logger safely even if a caller drives
// them from more than one goroutine (e.g. a pipeline engine stepped
// concurrently with a stats reporter).
package rvlog

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Handler serializes writes to an underlying io.Writer across concurrent
// slog calls. Everything else delegates to the wrapped handler.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	inner  slog.Handler
	debug  bool
}

// NewHandler builds a Handler writing to w, at slog.LevelDebug when debug is
// true and slog.LevelInfo otherwise. The pipeline engine logs its
// squash/stall/halt events at slog.LevelDebug, so without debug those calls
// are silently dropped by the level check.
func NewHandler(w io.Writer, debug bool) *Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return &Handler{
		mu:    &sync.Mutex{},
		w:     w,
		debug: debug,
		inner: slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inner.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{mu: h.mu, w: h.w, debug: h.debug, inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{mu: h.mu, w: h.w, debug: h.debug, inner: h.inner.WithGroup(name)}
}

// New returns a *slog.Logger backed by a Handler over w.
func New(w io.Writer, debug bool) *slog.Logger {
	return slog.New(NewHandler(w, debug))
}

// Default returns slog.Default(), for engines constructed without an
// explicit logger option.
func Default() *slog.Logger {
	return slog.Default()
}
