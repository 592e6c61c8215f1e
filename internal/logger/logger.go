// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logger provides a slog.Handler that writes one line per record:
//
//	2006/01/02 15:04:05 INFO: message key=value ...
//
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// TimeFormat is the time format of log lines.
const TimeFormat = "2006/01/02 15:04:05"

// Handler is a slog.Handler writing records to a primary writer and
// optionally mirroring them to a second one, usually os.Stderr.
//
// Debug records are only mirrored in debug mode.
//
type Handler struct {
	out    io.Writer
	mirror io.Writer
	level  slog.Leveler
	prefix string // group prefix for attribute keys
	attrs  string // preformatted attributes
	mu     *sync.Mutex
	debug  bool
}

// NewHandler returns a new Handler writing to out. Records are mirrored to
// mirror if not nil. Only opts.Level is used.
//
func NewHandler(out io.Writer, opts *slog.HandlerOptions, mirror io.Writer, debug bool) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{
		out:    out,
		mirror: mirror,
		level:  level,
		mu:     &sync.Mutex{},
		debug:  debug,
	}
}

// Enabled implements slog.Handler.
//
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.debug && h.mirror != nil {
		return true
	}
	return level >= h.level.Level()
}

// WithAttrs implements slog.Handler.
//
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	n.attrs = b.String()
	return &n
}

// WithGroup implements slog.Handler.
//
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.prefix = h.prefix + name + "."
	return &n
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, prefix, ga)
		}
		return
	}
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\n\"=") {
		v = fmt.Sprintf("%q", v)
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(v)
}

// Handle implements slog.Handler.
//
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format(TimeFormat))
		b.WriteByte(' ')
	}
	b.WriteString(r.Level.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')
	line := []byte(b.String())

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil && r.Level >= h.level.Level() {
		_, err = h.out.Write(line)
	}
	if h.mirror != nil && (h.debug || r.Level > slog.LevelDebug) {
		if _, merr := h.mirror.Write(line); err == nil {
			err = merr
		}
	}
	return err
}
