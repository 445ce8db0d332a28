/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package plan

import (
	"github.com/dhconnelly/rtreego"

	"chambermap/internal/chamber"
	"chambermap/internal/geom"
)

const (
	treeMinChildren = 4
	treeMaxChildren = 16
	// boxes are padded so flat chambers still have positive extent
	boxPad = 0.5
)

type indexEntry struct {
	id  chamber.ChamberID
	box rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.box }

// spatialIndex maps chamber bounding boxes to chamber ids.
type spatialIndex struct {
	tree    *rtreego.Rtree
	entries map[chamber.ChamberID]*indexEntry
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		tree:    rtreego.NewTree(2, treeMinChildren, treeMaxChildren),
		entries: map[chamber.ChamberID]*indexEntry{},
	}
}

func (s *spatialIndex) update(c *chamber.Chamber) {
	s.remove(c.ID)
	box, ok := c.BoundingBox()
	if !ok {
		return
	}
	lo, hi := box.Min.Vec(), box.Max.Vec()
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{lo.X - boxPad, lo.Y - boxPad},
		rtreego.Point{hi.X + boxPad, hi.Y + boxPad},
	)
	if err != nil {
		return
	}
	e := &indexEntry{id: c.ID, box: r}
	s.entries[c.ID] = e
	s.tree.Insert(e)
}

func (s *spatialIndex) remove(id chamber.ChamberID) {
	if e, ok := s.entries[id]; ok {
		s.tree.Delete(e)
		delete(s.entries, id)
	}
}

// near returns the ids of chambers whose padded box intersects the square of
// half-width radius around p.
func (s *spatialIndex) near(p geom.Vec, radius float64) []chamber.ChamberID {
	if radius <= 0 {
		radius = 1e-6
	}
	hits := s.tree.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(radius))
	out := make([]chamber.ChamberID, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexEntry).id)
	}
	return out
}

func (s *spatialIndex) size() int { return s.tree.Size() }
