/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides the slog logger shared by chambermap's packages.
//
// Console output is one line per record, tagged with the component and the
// chamber being edited:
//
//	14:02:11.204 INF [editor#3] chamber closed op=close walls=4
//
// JSON output (and the optional rotating file) carries the same fields as keys.
// A plan root attached with ContextWithPlan shows up as the "plan" attribute
// on every record logged with that context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"chambermap/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Attribute keys with a fixed meaning across the module.
const (
	KeyComponent = "component"
	KeyOperation = "op"
	KeyChamber   = "chamber"
	KeyPlan      = "plan"
)

// Options controls logger initialization. FromEnv reads them from
// CHM_LOG_LEVEL, CHM_LOG_FORMAT, CHM_LOG_SOURCE and CHM_LOG_FILE.
type Options struct {
	Level     string // debug|info|warn|error, default info
	Format    string // console|json, default console
	AddSource bool
	File      string // JSON records are also appended here, rotated
}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the process logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init installs a stderr logger built from opts as the process logger and slog.Default.
func Init(opts Options) { Use(New(os.Stderr, opts)) }

// Use installs l as the process logger and slog.Default.
func Use(l *slog.Logger) {
	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
}

// New builds a logger writing to w in the configured format.
func New(w io.Writer, opts Options) *slog.Logger {
	ho := &slog.HandlerOptions{Level: parseLevel(opts.Level), AddSource: opts.AddSource}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		h = slog.NewJSONHandler(w, ho)
	} else {
		h = newConsoleHandler(w, ho)
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		rot := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		h = tee{h, slog.NewJSONHandler(rot, ho)}
	}
	return slog.New(planHandler{next: h}).With(
		slog.String("app", "chambermap"),
		slog.String("ver", version.Version),
	)
}

// FromEnv builds Options from the CHM_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("CHM_LOG_LEVEL", "info"),
		Format:    getenv("CHM_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("CHM_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("CHM_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns the process logger tagged with a component name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(KeyComponent, name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String(KeyOperation, op)) }

// WithChamber annotates the logger with the chamber an edit applies to.
func WithChamber(l *slog.Logger, id uint32) *slog.Logger {
	return l.With(slog.Uint64(KeyChamber, uint64(id)))
}

type planKey struct{}

// ContextWithPlan attaches a plan root to ctx.
func ContextWithPlan(ctx context.Context, root string) context.Context {
	return context.WithValue(ctx, planKey{}, root)
}

// PlanFromContext returns the plan root attached by ContextWithPlan.
func PlanFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	root, ok := ctx.Value(planKey{}).(string)
	return root, ok && root != ""
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// planHandler copies the context's plan root onto each record.
type planHandler struct{ next slog.Handler }

func (h planHandler) Enabled(ctx context.Context, l slog.Level) bool { return h.next.Enabled(ctx, l) }

func (h planHandler) Handle(ctx context.Context, r slog.Record) error {
	if root, ok := PlanFromContext(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String(KeyPlan, root))
	}
	return h.next.Handle(ctx, r)
}

func (h planHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return planHandler{next: h.next.WithAttrs(as)}
}

func (h planHandler) WithGroup(name string) slog.Handler {
	return planHandler{next: h.next.WithGroup(name)}
}

// tee sends each record to every handler and reports the first error.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t tee) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// consoleHandler writes the one-line console format. Component and chamber
// attrs set through With move into the bracketed tag; app and ver are dropped.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	source    bool
	component string
	chamber   string
	group     string // dotted prefix for keys
	attrs     []byte // preformatted " k=v" pairs
}

func newConsoleHandler(w io.Writer, o *slog.HandlerOptions) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: o.Level, source: o.AddSource}
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	floor := slog.LevelInfo
	if h.level != nil {
		floor = h.level.Level()
	}
	return l >= floor
}

func (h *consoleHandler) WithAttrs(as []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]byte(nil), h.attrs...)
	for _, a := range as {
		if h.group == "" {
			switch a.Key {
			case "app", "ver":
				continue
			case KeyComponent:
				c.component = a.Value.String()
				continue
			case KeyChamber:
				c.chamber = a.Value.String()
				continue
			}
		}
		c.attrs = appendAttr(c.attrs, h.group, a)
	}
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.group + name + "."
	return &c
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	b := make([]byte, 0, 256)
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	b = t.AppendFormat(b, "15:04:05.000")
	b = append(b, ' ')
	b = append(b, levelTag(r.Level)...)
	if h.component != "" || h.chamber != "" {
		b = append(b, " ["...)
		b = append(b, h.component...)
		if h.chamber != "" {
			b = append(b, '#')
			b = append(b, h.chamber...)
		}
		b = append(b, ']')
	}
	b = append(b, ' ')
	b = append(b, r.Message...)
	b = append(b, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		b = appendAttr(b, h.group, a)
		return true
	})
	if h.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b = append(b, " src="...)
		b = append(b, filepath.Base(f.File)...)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(f.Line), 10)
	}
	b = append(b, '\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(b)
	return err
}

func appendAttr(b []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return b
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			b = appendAttr(b, p, ga)
		}
		return b
	}
	b = append(b, ' ')
	b = append(b, prefix...)
	b = append(b, a.Key...)
	b = append(b, '=')
	return appendValue(b, a.Value)
}

func appendValue(b []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.AppendInt(b, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(b, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(b, v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(b, v.Bool())
	case slog.KindDuration:
		return append(b, v.Duration().String()...)
	}
	s := v.String()
	if err, ok := v.Any().(error); ok && v.Kind() == slog.KindAny {
		s = err.Error()
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.AppendQuote(b, s)
	}
	return append(b, s...)
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}
