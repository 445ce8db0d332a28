/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package geom holds the 2D vector types shared by the chamber kernel.
// Persisted coordinates are grid-aligned int32 pairs; query points and
// results are float64 vectors backed by gonum's spatial/r2.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a double-precision point or direction.
type Vec = r2.Vec

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns a+b.
func Add(a, b Vec) Vec { return r2.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r2.Sub(a, b) }

// Scale returns f*v.
func Scale(f float64, v Vec) Vec { return r2.Scale(f, v) }

// Dot returns the dot product of a and b.
func Dot(a, b Vec) float64 { return r2.Dot(a, b) }

// Len returns the Euclidean length of v.
func Len(v Vec) float64 { return r2.Norm(v) }

// Len2 returns the squared length of v.
func Len2(v Vec) float64 { return r2.Norm2(v) }

// Unit returns v scaled to length 1. The zero vector yields NaN components.
func Unit(v Vec) Vec { return r2.Unit(v) }

// Dist returns the distance between a and b.
func Dist(a, b Vec) float64 { return r2.Norm(r2.Sub(a, b)) }

// Dist2 returns the squared distance between a and b.
func Dist2(a, b Vec) float64 { return r2.Norm2(r2.Sub(a, b)) }

// Lerp returns a + t*(b-a).
func Lerp(a, b Vec, t float64) Vec { return r2.Add(a, r2.Scale(t, r2.Sub(b, a))) }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// IVec is a grid-aligned integer coordinate.
type IVec struct{ X, Y int32 }

// I is shorthand for IVec{X: x, Y: y}.
func I(x, y int32) IVec { return IVec{X: x, Y: y} }

// Add returns p+q.
func (p IVec) Add(q IVec) IVec { return IVec{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p IVec) Sub(q IVec) IVec { return IVec{p.X - q.X, p.Y - q.Y} }

// Eq reports whether p and q are the same grid point.
func (p IVec) Eq(q IVec) bool { return p == q }

// Vec converts p to floating point.
func (p IVec) Vec() Vec { return Vec{X: float64(p.X), Y: float64(p.Y)} }

// IBox is an inclusive axis-aligned box on the integer grid.
type IBox struct{ Min, Max IVec }

// BoxOf returns the degenerate box containing only p.
func BoxOf(p IVec) IBox { return IBox{Min: p, Max: p} }

// Extend grows b to include p.
func (b IBox) Extend(p IVec) IBox {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	return b
}

// Union returns the smallest box containing both.
func (b IBox) Union(o IBox) IBox { return b.Extend(o.Min).Extend(o.Max) }

// Size returns the box extent, Max-Min.
func (b IBox) Size() IVec { return b.Max.Sub(b.Min) }

// Contains reports whether p lies inside b, edges included.
func (b IBox) Contains(p Vec) bool {
	return p.X >= float64(b.Min.X) && p.Y >= float64(b.Min.Y) &&
		p.X <= float64(b.Max.X) && p.Y <= float64(b.Max.Y)
}

// Center returns the midpoint of b.
func (b IBox) Center() Vec { return Lerp(b.Min.Vec(), b.Max.Vec(), 0.5) }

// Vec converts b to a gonum box.
func (b IBox) Vec() r2.Box { return r2.Box{Min: b.Min.Vec(), Max: b.Max.Vec()} }
