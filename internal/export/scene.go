/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders chamber plans to SVG, PDF and PNG.
package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"chambermap/internal/chamber"
	"chambermap/internal/config"
	"chambermap/internal/geom"
	"chambermap/internal/plan"
)

// Options controls plan rendering for all formats.
// - Scale is the output size of one grid unit (pixels for PNG and SVG, points for PDF);
//   zero uses the plan's grid cell size, then 20.
// - Margin is the blank border in grid units; zero uses 1.
// - LabelCell is the label-anchor sampling step in grid units.
//
//nolint:revive // clarity is preferred
type Options struct {
	Scale         float64
	Margin        float64
	ShowDoors     bool
	ShowLabels    bool
	IncludeHidden bool
	LabelCell     float64
	WallColor     color.RGBA
	DoorColor     color.RGBA
	Background    color.RGBA
}

// OptionsFromConfig derives render options from the user configuration.
func OptionsFromConfig(cfg config.AppConfig) Options {
	return Options{
		Scale:      cfg.Grid.CellSize,
		ShowDoors:  cfg.Export.ShowDoors,
		ShowLabels: true,
		LabelCell:  cfg.Label.SampleCell,
	}
}

const doorHalfWidth = 0.4

type shape struct {
	c      *chamber.Chamber
	points []geom.Vec
	fill   color.RGBA
	label  string
	anchor *geom.Vec
}

type tick struct {
	a, b geom.Vec
}

// scene is a plan resolved into drawable primitives in grid units plus the
// transform to output units.
type scene struct {
	min        geom.Vec
	w, h       float64
	scale      float64
	margin     float64
	shapes     []shape
	ticks      []tick
	wallColor  color.RGBA
	doorColor  color.RGBA
	background color.RGBA
}

func buildScene(p *plan.Plan, opt Options) (*scene, error) {
	if p == nil {
		return nil, fmt.Errorf("plan is nil")
	}
	s := &scene{
		scale:      opt.Scale,
		margin:     opt.Margin,
		wallColor:  opt.WallColor,
		doorColor:  opt.DoorColor,
		background: opt.Background,
	}
	if s.scale <= 0 {
		s.scale = p.Grid.CellSize
	}
	if s.scale <= 0 {
		s.scale = 20
	}
	if s.margin <= 0 {
		s.margin = 1
	}
	if s.wallColor == (color.RGBA{}) {
		s.wallColor = color.RGBA{A: 255}
	}
	if s.doorColor == (color.RGBA{}) {
		s.doorColor = color.RGBA{R: 160, G: 80, B: 20, A: 255}
	}
	if s.background == (color.RGBA{}) {
		s.background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	var box geom.IBox
	haveBox := false
	drawn := make(map[chamber.ChamberID]bool)
	for _, c := range p.Chambers() {
		if (c.Hidden && !opt.IncludeHidden) || !c.Closed() {
			continue
		}
		cb, ok := c.BoundingBox()
		if !ok {
			continue
		}
		if haveBox {
			box = box.Union(cb)
		} else {
			box, haveBox = cb, true
		}
		sh := shape{c: c, fill: c.Color, label: c.Name}
		for _, v := range c.Vertices() {
			sh.points = append(sh.points, v.Vec())
		}
		if sh.fill == (color.RGBA{}) {
			sh.fill = color.RGBA{R: 220, G: 214, B: 200, A: 255}
		}
		if opt.ShowLabels && strings.TrimSpace(c.Name) != "" {
			if a, ok := c.LabelAnchorWithCell(opt.LabelCell); ok {
				sh.anchor = &a
			}
		}
		s.shapes = append(s.shapes, sh)
		drawn[c.ID] = true
	}
	if opt.ShowDoors {
		for _, d := range p.Doors() {
			if !drawn[d.Chamber] {
				continue
			}
			pt, tan, ok := p.DoorPoint(d)
			if !ok {
				continue
			}
			off := geom.Scale(doorHalfWidth, tan)
			s.ticks = append(s.ticks, tick{a: geom.Sub(pt, off), b: geom.Add(pt, off)})
		}
	}
	if haveBox {
		s.min = box.Min.Vec()
		sz := box.Size()
		s.w, s.h = float64(sz.X), float64(sz.Y)
	}
	return s, nil
}

// width and height of the output in output units.
func (s *scene) width() float64  { return (s.w + 2*s.margin) * s.scale }
func (s *scene) height() float64 { return (s.h + 2*s.margin) * s.scale }

// out maps a grid-space point to output units.
func (s *scene) out(v geom.Vec) (float64, float64) {
	return (v.X - s.min.X + s.margin) * s.scale, (v.Y - s.min.Y + s.margin) * s.scale
}

// in maps an output point back to grid space.
func (s *scene) in(x, y float64) geom.Vec {
	return geom.V(x/s.scale+s.min.X-s.margin, y/s.scale+s.min.Y-s.margin)
}

func (s *scene) pixelSize() (int, int) {
	return int(math.Ceil(s.width())), int(math.Ceil(s.height()))
}

// ResolveOutPath places relative output paths under the plan's exports folder.
func ResolveOutPath(root, out string) string {
	if filepath.IsAbs(out) || root == "" {
		return out
	}
	return filepath.Join(root, "exports", out)
}

// ExportFile renders the plan in the given format (svg, pdf or png) to outPath.
func ExportFile(p *plan.Plan, format, outPath string, opt Options) error {
	if outPath == "" {
		return fmt.Errorf("output path is empty")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(outPath)), ".")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if format == "pdf" {
		return WritePDFFile(p, outPath, opt)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", format, err)
	}
	switch format {
	case "svg":
		err = WriteSVG(f, p, opt)
	case "png":
		err = WritePNG(f, p, opt)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", format, err)
	}
	return nil
}
