/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package chamber

import (
	"testing"

	"chambermap/internal/geom"
)

func square(t *testing.T) *Chamber {
	return build(t, geom.I(0, 0), geom.I(0, 10), geom.I(10, 10), geom.I(10, 0))
}

func uShape(t *testing.T) *Chamber {
	return build(t,
		geom.I(150, 350), geom.I(250, 350), geom.I(250, 550), geom.I(350, 550),
		geom.I(350, 350), geom.I(450, 350), geom.I(450, 650), geom.I(150, 650))
}

func TestContainsPointSquare(t *testing.T) {
	c := square(t)
	cases := []struct {
		p    geom.Vec
		want bool
	}{
		{geom.V(5, 5), true},
		{geom.V(-5, 5), false},
		{geom.V(5, -5), false},
		{geom.V(15, 5), false},
	}
	for _, tc := range cases {
		if got := c.ContainsPoint(tc.p); got != tc.want {
			t.Fatalf("ContainsPoint(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestContainsPointConcave(t *testing.T) {
	c := uShape(t)
	cases := []struct {
		p    geom.Vec
		want bool
	}{
		{geom.V(300, 400), false},
		{geom.V(200, 400), true},
		{geom.V(400, 400), true},
		{geom.V(300, 600), true},
	}
	for _, tc := range cases {
		if got := c.ContainsPoint(tc.p); got != tc.want {
			t.Fatalf("ContainsPoint(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestContainsPointIgnoresHorizontalWalls(t *testing.T) {
	// ray at the height of the top and bottom walls
	c := square(t)
	if c.ContainsPoint(geom.V(20, 10)) {
		t.Fatalf("point right of the square on its top edge line should be outside")
	}
	if New(1, "").ContainsPoint(geom.V(0, 0)) {
		t.Fatalf("empty chamber contains nothing")
	}
}

func TestNearestWall(t *testing.T) {
	c := square(t)
	w, ok := c.NearestWall(geom.V(5, 9))
	if !ok || w.P1 != geom.I(0, 10) || w.P2 != geom.I(10, 10) {
		t.Fatalf("NearestWall = %+v %v", w, ok)
	}
	if _, ok := New(1, "").NearestWall(geom.V(0, 0)); ok {
		t.Fatalf("empty chamber should have no nearest wall")
	}
}

func TestNearestCornerSharesPoint(t *testing.T) {
	c := uShape(t)
	for _, p := range []geom.Vec{geom.V(0, 0), geom.V(260, 540), geom.V(451, 649), geom.V(300, 300)} {
		w1, w2, ok := c.NearestCorner(p)
		if !ok || w1.P2 != w2.P1 {
			t.Fatalf("NearestCorner(%v) = %+v %+v %v", p, w1, w2, ok)
		}
	}
	w1, _, _ := c.NearestCorner(geom.V(260, 540))
	if w1.P2 != geom.I(250, 550) {
		t.Fatalf("corner = %v, want (250,550)", w1.P2)
	}
	if _, _, ok := New(1, "").NearestCorner(geom.V(0, 0)); ok {
		t.Fatalf("empty chamber should have no corner")
	}
}

func TestBoundingBox(t *testing.T) {
	c := uShape(t)
	box, ok := c.BoundingBox()
	if !ok || box.Min != geom.I(150, 350) || box.Max != geom.I(450, 650) {
		t.Fatalf("BoundingBox = %+v %v", box, ok)
	}
	if _, ok := build(t, geom.I(1, 1)).BoundingBox(); ok {
		t.Fatalf("pending-only chamber has no box")
	}
}

func TestAreaAndPerimeter(t *testing.T) {
	c := square(t)
	if !approx(c.Area(), 100) || !approx(c.Perimeter(), 40) {
		t.Fatalf("area=%v perimeter=%v", c.Area(), c.Perimeter())
	}
	// (0,0)→(0,10)→(10,10)→(10,0) is clockwise with y up
	if c.SignedArea() >= 0 {
		t.Fatalf("SignedArea = %v, want negative", c.SignedArea())
	}
	// U: 300x300 body minus 100x200 notch
	if got := uShape(t).Area(); !approx(got, 70000) {
		t.Fatalf("U area = %v", got)
	}
}
