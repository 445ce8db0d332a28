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
	"fmt"

	"chambermap/internal/chamber"
	"chambermap/internal/domain"
)

// ToDomain returns the persisted form of the plan.
func (p *Plan) ToDomain() domain.Plan {
	out := domain.Plan{
		Name:     p.Name,
		Metadata: p.Metadata,
		Grid:     p.Grid,
		Chambers: make([]domain.Chamber, 0, len(p.chambers)),
	}
	for _, c := range p.Chambers() {
		out.Chambers = append(out.Chambers, c.Record())
	}
	for _, d := range p.Doors() {
		out.Doors = append(out.Doors, domain.Door{
			ID: uint32(d.ID), Chamber: uint32(d.Chamber), Wall: uint32(d.Wall), Pos: d.Pos,
		})
	}
	return out
}

// FromDomain rebuilds a plan from its persisted form. Doors referring to a
// missing chamber or wall are dropped.
func FromDomain(dp domain.Plan) (*Plan, error) {
	p := New(dp.Name)
	p.Metadata = dp.Metadata
	if dp.Grid.CellSize > 0 {
		p.Grid = dp.Grid
	}
	for _, rec := range dp.Chambers {
		if _, dup := p.chambers[chamber.ChamberID(rec.ID)]; dup {
			return nil, fmt.Errorf("chamber %d appears twice", rec.ID)
		}
		c, err := chamber.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		p.PutChamber(c)
	}
	for _, d := range dp.Doors {
		c, ok := p.chambers[chamber.ChamberID(d.Chamber)]
		if !ok {
			continue
		}
		if _, ok := c.Wall(chamber.WallID(d.Wall)); !ok {
			continue
		}
		p.doors[DoorID(d.ID)] = &Door{
			ID: DoorID(d.ID), Chamber: c.ID, Wall: chamber.WallID(d.Wall), Pos: d.Pos,
		}
	}
	return p, nil
}
