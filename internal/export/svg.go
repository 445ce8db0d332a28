/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"chambermap/internal/plan"
)

// WriteSVG renders the plan as a standalone SVG document.
// The viewBox is in output units, so width/height match the pixel size.
func WriteSVG(w io.Writer, p *plan.Plan, opt Options) error {
	s, err := buildScene(p, opt)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	pxW, pxH := s.pixelSize()
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, s.width(), s.height())
	if title := strings.TrimSpace(p.Name); title != "" {
		wf("  <title>%s</title>\n", escText(title))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", s.width(), s.height(), svgColor(s.background))

	stroke := math.Max(1, s.scale/10)
	for _, sh := range s.shapes {
		pts := make([]string, 0, len(sh.points))
		for _, v := range sh.points {
			x, y := s.out(v)
			pts = append(pts, fmt.Sprintf("%g,%g", x, y))
		}
		wf("  <polygon data-chamber=\"%d\" points=\"%s\" fill=\"%s\" fill-opacity=\"%.3f\" stroke=\"%s\" stroke-width=\"%g\" stroke-linejoin=\"round\"/>\n",
			sh.c.ID, strings.Join(pts, " "), svgColor(sh.fill), float64(sh.fill.A)/255, svgColor(s.wallColor), stroke)
	}
	for _, t := range s.ticks {
		x1, y1 := s.out(t.a)
		x2, y2 := s.out(t.b)
		wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"%g\" stroke-linecap=\"round\"/>\n",
			x1, y1, x2, y2, svgColor(s.doorColor), 2*stroke)
	}
	fsz := math.Max(8, s.scale*0.6)
	for _, sh := range s.shapes {
		if sh.anchor == nil {
			continue
		}
		x, y := s.out(*sh.anchor)
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" text-anchor=\"middle\" dominant-baseline=\"middle\" fill=\"#000\">%s</text>\n",
			x, y, escAttr("Helvetica, Arial, sans-serif"), fsz, escText(sh.label))
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
