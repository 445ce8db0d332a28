/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestVecArithmetic(t *testing.T) {
	a := V(3, 4)
	if Len(a) != 5 || Len2(a) != 25 {
		t.Fatalf("unexpected length: %v %v", Len(a), Len2(a))
	}
	u := Unit(a)
	if math.Abs(u.X-0.6) > 1e-12 || math.Abs(u.Y-0.8) > 1e-12 {
		t.Fatalf("unexpected unit: %+v", u)
	}
	if d := Dot(a, V(1, 0)); d != 3 {
		t.Fatalf("dot = %v", d)
	}
	if s := Add(a, V(1, -1)); s != V(4, 3) {
		t.Fatalf("add = %+v", s)
	}
	if s := Sub(a, V(1, -1)); s != V(2, 5) {
		t.Fatalf("sub = %+v", s)
	}
	if s := Scale(-2, a); s != V(-6, -8) {
		t.Fatalf("scale = %+v", s)
	}
	if m := Lerp(V(0, 0), V(10, -10), 0.25); m != V(2.5, -2.5) {
		t.Fatalf("lerp = %+v", m)
	}
	if Dist(V(1, 1), V(4, 5)) != 5 || Dist2(V(1, 1), V(4, 5)) != 25 {
		t.Fatalf("dist mismatch")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, want float64 }{{-1, 0}, {0.3, 0.3}, {2, 1}}
	for _, c := range cases {
		if got := Clamp(c.v, 0, 1); got != c.want {
			t.Fatalf("Clamp(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestIVecAndBox(t *testing.T) {
	p := I(2, 3).Add(I(1, -1))
	if p != I(3, 2) || p.Sub(I(3, 2)) != I(0, 0) {
		t.Fatalf("ivec arithmetic: %+v", p)
	}
	if v := p.Vec(); v != V(3, 2) {
		t.Fatalf("ivec to vec: %+v", v)
	}
	b := BoxOf(I(0, 0)).Extend(I(10, -5)).Extend(I(-2, 7))
	if b.Min != I(-2, -5) || b.Max != I(10, 7) {
		t.Fatalf("unexpected box: %+v", b)
	}
	if !b.Contains(V(10, 7)) || b.Contains(V(10.5, 0)) {
		t.Fatalf("contains mismatch")
	}
	if c := b.Center(); c != V(4, 1) {
		t.Fatalf("center = %+v", c)
	}
	if s := b.Size(); s != I(12, 12) {
		t.Fatalf("size = %+v", s)
	}
	u := BoxOf(I(20, 20)).Union(b)
	if u.Min != I(-2, -5) || u.Max != I(20, 20) {
		t.Fatalf("union = %+v", u)
	}
	rb := b.Vec()
	if rb.Min != V(-2, -5) || rb.Max != V(10, 7) {
		t.Fatalf("r2 box = %+v", rb)
	}
}
