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
	"fmt"
	"slices"

	"chambermap/internal/geom"
)

// Preview is the outline shown while a vertex is being placed.
// Closed tells the renderer whether to join the last point back to the first.
type Preview struct {
	Points []geom.Vec
	Closed bool
}

// PreviewProjection returns the outline the chamber would have if pending
// were placed, either by splitting wall split or, when split is nil, by
// appending (which splits the closing wall). The chamber is not modified.
func (c *Chamber) PreviewProjection(pending geom.IVec, split *WallID) (Preview, error) {
	if len(c.walls) == 0 {
		if c.first == nil {
			return Preview{Points: []geom.Vec{pending.Vec()}}, nil
		}
		return Preview{Points: []geom.Vec{c.first.Vec(), pending.Vec()}}, nil
	}
	i := len(c.walls) - 1
	if split != nil {
		if i = c.indexOf(*split); i < 0 {
			return Preview{}, fmt.Errorf("preview split wall %d: %w", *split, ErrWallNotFound)
		}
	}
	walls := slices.Clone(c.walls)
	first, second := walls[i].Split(pending, walls[i].ID)
	walls[i] = first
	walls = slices.Insert(walls, i+1, second)

	pts := make([]geom.Vec, len(walls))
	for k, w := range walls {
		pts[k] = w.P1.Vec()
	}
	return Preview{Points: pts, Closed: true}, nil
}
