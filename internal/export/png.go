/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"chambermap/internal/geom"
	"chambermap/internal/plan"
)

// supersample is the oversampling factor for fills and strokes.
// Labels are drawn after the downscale so the bitmap font stays sharp.
const supersample = 2

// RenderImage rasterises the plan.
func RenderImage(p *plan.Plan, opt Options) (*image.RGBA, error) {
	s, err := buildScene(p, opt)
	if err != nil {
		return nil, err
	}
	w, h := s.pixelSize()
	hi := *s
	hi.scale *= supersample

	big := image.NewRGBA(image.Rect(0, 0, w*supersample, h*supersample))
	draw.Draw(big, big.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)

	for _, sh := range s.shapes {
		fillShape(big, &hi, sh)
	}
	half := math.Max(1, hi.scale/20)
	for _, sh := range s.shapes {
		for i := range sh.points {
			ax, ay := hi.out(sh.points[i])
			bx, by := hi.out(sh.points[(i+1)%len(sh.points)])
			strokeSegment(big, geom.V(ax, ay), geom.V(bx, by), half, s.wallColor)
		}
	}
	for _, t := range s.ticks {
		ax, ay := hi.out(t.a)
		bx, by := hi.out(t.b)
		strokeSegment(big, geom.V(ax, ay), geom.V(bx, by), 2*half, s.doorColor)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(img, img.Bounds(), big, big.Bounds(), draw.Src, nil)

	face := basicfont.Face7x13
	for _, sh := range s.shapes {
		if sh.anchor == nil {
			continue
		}
		x, y := s.out(*sh.anchor)
		drawLabel(img, face, sh.label, x, y)
	}
	return img, nil
}

// WritePNG renders the plan and encodes it as PNG to w.
func WritePNG(w io.Writer, p *plan.Plan, opt Options) error {
	img, err := RenderImage(p, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// fillShape scans the chamber's pixel box row by row and masks every pixel
// whose centre lies inside the polygon.
func fillShape(dst *image.RGBA, s *scene, sh shape) {
	box, ok := sh.c.BoundingBox()
	if !ok {
		return
	}
	x0, y0 := s.out(box.Min.Vec())
	x1, y1 := s.out(box.Max.Vec())
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1))).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	mask := image.NewAlpha(r)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			if sh.c.ContainsPoint(s.in(float64(px)+0.5, float64(py)+0.5)) {
				mask.SetAlpha(px, py, color.Alpha{A: 255})
			}
		}
	}
	src := image.NewUniform(color.NRGBA{R: sh.fill.R, G: sh.fill.G, B: sh.fill.B, A: sh.fill.A})
	draw.DrawMask(dst, r, src, image.Point{}, mask, r.Min, draw.Over)
}

// strokeSegment paints every pixel whose centre is within half of segment ab.
func strokeSegment(dst *image.RGBA, a, b geom.Vec, half float64, col color.RGBA) {
	r := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-half)), int(math.Floor(math.Min(a.Y, b.Y)-half)),
		int(math.Ceil(math.Max(a.X, b.X)+half)), int(math.Ceil(math.Max(a.Y, b.Y)+half)),
	).Intersect(dst.Bounds())
	ab := geom.Sub(b, a)
	l2 := geom.Len2(ab)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			p := geom.V(float64(px)+0.5, float64(py)+0.5)
			t := 0.0
			if l2 > 0 {
				t = geom.Clamp(geom.Dot(geom.Sub(p, a), ab)/l2, 0, 1)
			}
			if geom.Dist(p, geom.Lerp(a, b, t)) <= half {
				dst.SetRGBA(px, py, col)
			}
		}
	}
}

// drawLabel centres text on (x, y).
func drawLabel(dst draw.Image, face font.Face, text string, x, y float64) {
	m := face.Metrics()
	width := font.MeasureString(face, text)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(math.Round(x))) - width/2,
			Y: fixed.I(int(math.Round(y))) + (m.Ascent-m.Descent)/2,
		},
	}
	d.DrawString(text)
}
