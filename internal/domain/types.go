/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the persisted data model of a chamber plan.
// These are plain records; the live, invariant-preserving representation
// lives in internal/chamber and internal/plan.

// Plan is the document a user edits: a set of chambers on one grid.
// It serializes to a human-readable JSON manifest (plan.json).
type Plan struct {
	Name     string    `json:"name"`
	Metadata Metadata  `json:"metadata,omitempty"`
	Grid     Grid      `json:"grid"`
	Chambers []Chamber `json:"chambers"`
	Doors    []Door    `json:"doors,omitempty"`
}

// Metadata contains optional descriptive metadata for a plan.
type Metadata struct {
	Author string `json:"author,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Grid describes the unit system of all wall coordinates.
type Grid struct {
	CellSize float64 `json:"cellSize"`       // rendered size of one unit
	Unit     string  `json:"unit,omitempty"` // e.g. "ft"
}

// Chamber is the persisted form of one closed polygon.
// With fewer than two vertices Walls is empty and First holds the pending
// first vertex (if any).
type Chamber struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Notes  string `json:"notes,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
	Color  Color  `json:"color"`
	First  *Point `json:"first,omitempty"`
	Walls  []Wall `json:"walls"`
}

// Wall is one directed edge of a chamber.
type Wall struct {
	ID uint32 `json:"id"`
	P1 Point  `json:"p1"`
	P2 Point  `json:"p2"`
}

// Point is a grid-aligned coordinate.
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Door is attached to a wall at a relative position along it (0..1 from p1).
type Door struct {
	ID      uint32  `json:"id"`
	Chamber uint32  `json:"chamber"`
	Wall    uint32  `json:"wall"`
	Pos     float64 `json:"pos"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}
