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
	"image/color"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"chambermap/internal/plan"
)

// newPlanPDF lays the plan out on a single page sized to the plan.
// Units are points; Options.Scale is points per grid unit.
// Labels use built-in Helvetica so no font embedding is needed.
func newPlanPDF(p *plan.Plan, opt Options) (*gofpdf.Fpdf, error) {
	s, err := buildScene(p, opt)
	if err != nil {
		return nil, err
	}
	size := gofpdf.SizeType{Wd: s.width(), Ht: s.height()}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    size,
		// orientation follows the size
		OrientationStr: "",
	})
	pdf.SetTitle(p.Name, true)
	pdf.SetCreator("chambermap", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	setFillColor(pdf, s.background)
	pdf.Rect(0, 0, size.Wd, size.Ht, "F")

	stroke := math.Max(0.5, s.scale/10)
	for _, sh := range s.shapes {
		pts := make([]gofpdf.PointType, 0, len(sh.points))
		for _, v := range sh.points {
			x, y := s.out(v)
			pts = append(pts, gofpdf.PointType{X: x, Y: y})
		}
		pdf.SetAlpha(float64(sh.fill.A)/255, "Normal")
		setFillColor(pdf, sh.fill)
		pdf.Polygon(pts, "F")
		pdf.SetAlpha(1, "Normal")
		setDrawColor(pdf, s.wallColor)
		pdf.SetLineWidth(stroke)
		pdf.SetLineJoinStyle("round")
		pdf.Polygon(pts, "D")
	}

	setDrawColor(pdf, s.doorColor)
	pdf.SetLineWidth(2 * stroke)
	pdf.SetLineCapStyle("round")
	for _, t := range s.ticks {
		x1, y1 := s.out(t.a)
		x2, y2 := s.out(t.b)
		pdf.Line(x1, y1, x2, y2)
	}

	fsz := math.Max(6, s.scale*0.6)
	pdf.SetFont("Helvetica", "", fsz)
	pdf.SetTextColor(0, 0, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, sh := range s.shapes {
		if sh.anchor == nil {
			continue
		}
		x, y := s.out(*sh.anchor)
		txt := tr(sh.label)
		pdf.Text(x-pdf.GetStringWidth(txt)/2, y+fsz*0.35, txt)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

// WritePDF renders the plan as a one-page PDF to w.
func WritePDF(w io.Writer, p *plan.Plan, opt Options) error {
	pdf, err := newPlanPDF(p, opt)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDFFile renders the plan to a PDF file at outPath.
func WritePDFFile(p *plan.Plan, outPath string, opt Options) error {
	pdf, err := newPlanPDF(p, opt)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
