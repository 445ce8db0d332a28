/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chambermap/internal/config"
	"chambermap/internal/crash"
	"chambermap/internal/editor"
	"chambermap/internal/export"
	"chambermap/internal/geom"
	applog "chambermap/internal/log"
	"chambermap/internal/plan"
	"chambermap/internal/storage"
	"chambermap/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Chambermap")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  chambermap version|-v|--version                Show version")
	fmt.Fprintln(w, "  chambermap init <dir> <name>                   Create a new plan at <dir> named <name>")
	fmt.Fprintln(w, "  chambermap open <dir>                          Open the plan at <dir> and print a summary")
	fmt.Fprintln(w, "  chambermap draw <dir> <name> x,y x,y ...       Add a chamber through the given vertices")
	fmt.Fprintln(w, "  chambermap inspect <dir> x,y                   Hit-test a point and show nearby walls and corners")
	fmt.Fprintln(w, "  chambermap export <dir> svg|pdf|png <out>      Render the plan (relative <out> goes to exports/)")
	fmt.Fprintln(w, "  chambermap index <dir> [query]                 Rebuild the search index if needed and list matches")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	defer crash.Recover(nil, nil)
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes one command and returns the process exit code.
func run(args []string, out io.Writer) int {
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(out)
		return 0
	}
	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	} else {
		// the config file may set logging beyond what the environment did
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		})
		l = applog.WithComponent("cli")
	}

	need := func(n int, msg string) bool {
		if len(args) < n {
			fmt.Fprintln(out, msg)
			usage(out)
			return false
		}
		return true
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, version.String())
		return 0
	case "init":
		if !need(3, "init requires <dir> and <name>") {
			return 2
		}
		abs, _ := filepath.Abs(args[1])
		l.InfoContext(applog.ContextWithPlan(context.Background(), abs), "init plan", slog.String("name", args[2]))
		p := plan.New(args[2])
		if cfg.Grid.CellSize > 0 {
			p.Grid.CellSize = cfg.Grid.CellSize
			p.Grid.Unit = cfg.Grid.Unit
		}
		if _, err := storage.InitProject(abs, p.ToDomain()); err != nil {
			return fail(out, l, "init", err)
		}
		fmt.Fprintln(out, "Created plan at", abs)
		return 0
	case "open":
		if !need(2, "open requires <dir>") {
			return 2
		}
		ph, p, err := load(args[1])
		if err != nil {
			return fail(out, l, "open", err)
		}
		defer crash.Recover(ph, nil)
		fmt.Fprintf(out, "Opened plan: %s\n", ph.Plan.Name)
		fmt.Fprintln(out, "Root:", ph.Root)
		fmt.Fprintf(out, "Chambers: %d  Doors: %d\n", len(p.Chambers()), len(p.Doors()))
		for _, c := range p.Chambers() {
			state := ""
			if c.Hidden {
				state = " (hidden)"
			}
			fmt.Fprintf(out, "  #%d %-20s walls=%d area=%g%s\n", c.ID, c.Name, c.WallCount(), c.Area(), state)
		}
		return 0
	case "draw":
		if !need(4, "draw requires <dir>, <name> and at least two vertices") {
			return 2
		}
		ph, p, err := load(args[1])
		if err != nil {
			return fail(out, l, "draw", err)
		}
		ed := editor.New(p, editor.OptionsFromConfig(cfg))
		defer crash.Recover(ph, ed.Document)
		id := ed.NewChamber(args[2])
		for _, a := range args[3:] {
			v, err := parsePoint(a)
			if err != nil {
				return fail(out, l, "draw", err)
			}
			if err := ed.PlaceVertex(id, v, nil); err != nil {
				return fail(out, l, "draw", err)
			}
		}
		ph.Plan = ed.Document()
		if err := storage.Save(ph); err != nil {
			return fail(out, l, "draw", err)
		}
		ed.MarkClean()
		pctx := applog.ContextWithPlan(context.Background(), ph.Root)
		if err := storage.UpdateIndex(pctx, ph.Root, ph.Plan); err != nil {
			l.WarnContext(pctx, "index update failed", slog.Any("err", err))
		}
		walls, _ := ed.Walls(id)
		fmt.Fprintf(out, "Added chamber #%d %q with %d walls\n", id, args[2], len(walls))
		if a, ok := ed.Label(id); ok {
			fmt.Fprintf(out, "Label anchor: %g,%g\n", a.X, a.Y)
		}
		return 0
	case "inspect":
		if !need(3, "inspect requires <dir> and x,y") {
			return 2
		}
		ph, p, err := load(args[1])
		if err != nil {
			return fail(out, l, "inspect", err)
		}
		defer crash.Recover(ph, nil)
		pt, err := parseVec(args[2])
		if err != nil {
			return fail(out, l, "inspect", err)
		}
		ed := editor.New(p, editor.OptionsFromConfig(cfg))
		if id, ok := ed.ChamberAt(pt); ok {
			c, _ := p.Chamber(id)
			fmt.Fprintf(out, "Inside chamber #%d %q\n", id, c.Name)
		} else {
			fmt.Fprintln(out, "Not inside any chamber")
		}
		if s, ok := ed.SnapWall(pt); ok {
			fmt.Fprintf(out, "Nearest wall: chamber #%d wall %d at %g,%g (pos %.3f, dist %.3f)\n", s.Chamber, s.Wall.ID, s.Point.X, s.Point.Y, s.Pos, s.Dist)
		}
		if s, ok := ed.SnapCorner(pt); ok {
			fmt.Fprintf(out, "Nearest corner: chamber #%d walls %d/%d at %g,%g (dist %.3f)\n", s.Chamber, s.In.ID, s.Out.ID, s.Point.X, s.Point.Y, s.Dist)
		}
		return 0
	case "export":
		if !need(4, "export requires <dir>, a format and <out>") {
			return 2
		}
		ph, p, err := load(args[1])
		if err != nil {
			return fail(out, l, "export", err)
		}
		defer crash.Recover(ph, nil)
		target := export.ResolveOutPath(ph.Root, args[3])
		start := time.Now()
		if err := export.ExportFile(p, args[2], target, export.OptionsFromConfig(cfg)); err != nil {
			return fail(out, l, "export", err)
		}
		l.InfoContext(applog.ContextWithPlan(context.Background(), ph.Root), "export done", slog.String("format", args[2]), slog.String("path", target), slog.Duration("took", time.Since(start)))
		fmt.Fprintln(out, "Wrote", target)
		return 0
	case "index":
		if !need(2, "index requires <dir>") {
			return 2
		}
		ph, _, err := load(args[1])
		if err != nil {
			return fail(out, l, "index", err)
		}
		defer crash.Recover(ph, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if rebuilt, err := storage.DetectAndRebuildIndex(ctx, ph.Root, ph.Plan); err != nil {
			return fail(out, l, "index", err)
		} else if rebuilt {
			fmt.Fprintln(out, "Index rebuilt")
		}
		if err := storage.UpdateIndex(ctx, ph.Root, ph.Plan); err != nil {
			return fail(out, l, "index", err)
		}
		q := storage.SearchQuery{Text: strings.Join(args[2:], " "), IncludeHidden: true}
		hits, err := storage.Search(ctx, ph.Root, q)
		if err != nil {
			return fail(out, l, "index", err)
		}
		for _, h := range hits {
			line := fmt.Sprintf("#%d %s walls=%d area=%g", h.ID, h.Name, h.WallCount, h.Area)
			if h.Snippet != "" {
				line += "  " + h.Snippet
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "%d chamber(s)\n", len(hits))
		return 0
	}
	usage(out)
	return 2
}

// load opens the plan at dir and rebuilds its live form.
func load(dir string) (*storage.ProjectHandle, *plan.Plan, error) {
	abs, _ := filepath.Abs(dir)
	ph, err := storage.Open(abs)
	if err != nil {
		return nil, nil, err
	}
	p, err := plan.FromDomain(ph.Plan)
	if err != nil {
		return nil, nil, fmt.Errorf("load plan: %w", err)
	}
	return ph, p, nil
}

func fail(out io.Writer, l *slog.Logger, op string, err error) int {
	l.Error(op+" failed", slog.Any("err", err))
	fmt.Fprintln(out, "Error:", err)
	return 1
}

// parsePoint parses an integer grid vertex written as "x,y".
func parsePoint(s string) (geom.IVec, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.IVec{}, fmt.Errorf("vertex %q: want x,y", s)
	}
	x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
	if err != nil {
		return geom.IVec{}, fmt.Errorf("vertex %q: %w", s, err)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
	if err != nil {
		return geom.IVec{}, fmt.Errorf("vertex %q: %w", s, err)
	}
	return geom.I(int32(x), int32(y)), nil
}

// parseVec parses a query point written as "x,y"; fractions are allowed.
func parseVec(s string) (geom.Vec, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Vec{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geom.V(x, y), nil
}
