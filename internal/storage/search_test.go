/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"chambermap/internal/domain"
	"chambermap/internal/geom"
)

func searchFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	hall := rectChamber(0, "Great Hall", 0, 0, 20, 10)
	hall.Notes = "banquet tables and a hearth"
	armory := rectChamber(1, "Armory", 30, 0, 40, 10)
	armory.Notes = "weapon racks"
	vault := rectChamber(2, "Secret Vault", 50, 0, 60, 10)
	vault.Notes = "treasure"
	vault.Hidden = true
	draft := domain.Chamber{ID: 3, Name: "Draft", First: &domain.Point{X: 5, Y: 5}, Walls: []domain.Wall{}}
	plan := domain.Plan{Name: "Search Test", Grid: domain.Grid{CellSize: 20},
		Chambers: []domain.Chamber{hall, armory, vault, draft}}
	if _, err := InitProject(root, plan); err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	return root
}

func TestSearchChambersByText(t *testing.T) {
	root := searchFixture(t)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hits, err := SearchChambers(ctx, db, SearchQuery{Text: "hall"})
	if err != nil {
		t.Fatalf("SearchChambers: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 0 || hits[0].Name != "Great Hall" {
		t.Fatalf("unexpected hits for 'hall': %+v", hits)
	}
	if !strings.Contains(hits[0].Snippet, "[") {
		t.Fatalf("expected highlighted snippet, got %q", hits[0].Snippet)
	}

	hits, err = SearchChambers(ctx, db, SearchQuery{Text: "racks"})
	if err != nil || len(hits) != 1 || hits[0].ID != 1 {
		t.Fatalf("notes search failed: %v %+v", err, hits)
	}

	hits, err = SearchChambers(ctx, db, SearchQuery{Text: "treasure"})
	if err != nil || len(hits) != 0 {
		t.Fatalf("hidden chamber should be filtered: %v %+v", err, hits)
	}
	hits, err = SearchChambers(ctx, db, SearchQuery{Text: "treasure", IncludeHidden: true})
	if err != nil || len(hits) != 1 || !hits[0].Hidden {
		t.Fatalf("hidden chamber should be found when requested: %v %+v", err, hits)
	}
}

func TestSearchChambersListing(t *testing.T) {
	root := searchFixture(t)
	ctx := context.Background()
	hits, err := Search(ctx, root, SearchQuery{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 visible chambers, got %d", len(hits))
	}
	hall := hits[0]
	if hall.WallCount != 4 || hall.Area != 200 {
		t.Fatalf("unexpected hall stats: %+v", hall)
	}
	if hall.Box == nil || *hall.Box != (geom.IBox{Min: geom.I(0, 0), Max: geom.I(20, 10)}) {
		t.Fatalf("unexpected hall box: %+v", hall.Box)
	}
	if hall.Label == nil || math.IsNaN(hall.Label.X) || hall.Label.X <= 0 || hall.Label.X >= 20 {
		t.Fatalf("expected interior label, got %+v", hall.Label)
	}
	draft := hits[2]
	if draft.ID != 3 || draft.Box != nil || draft.Label != nil || draft.WallCount != 0 {
		t.Fatalf("draft chamber should have no geometry: %+v", draft)
	}

	all, err := Search(ctx, root, SearchQuery{IncludeHidden: true})
	if err != nil || len(all) != 4 {
		t.Fatalf("expected 4 chambers including hidden: %v %d", err, len(all))
	}
	page, err := Search(ctx, root, SearchQuery{IncludeHidden: true, Limit: 2, Offset: 2})
	if err != nil || len(page) != 2 || page[0].ID != 2 {
		t.Fatalf("pagination mismatch: %v %+v", err, page)
	}
}

func TestChambersInBox(t *testing.T) {
	root := searchFixture(t)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	hits, err := ChambersInBox(context.Background(), db, geom.IBox{Min: geom.I(25, 0), Max: geom.I(35, 5)})
	if err != nil {
		t.Fatalf("ChambersInBox: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Fatalf("expected only the armory, got %+v", hits)
	}
	hits, err = ChambersInBox(context.Background(), db, geom.IBox{Min: geom.I(-5, -5), Max: geom.I(100, 100)})
	if err != nil || len(hits) != 3 {
		t.Fatalf("expected all walled chambers: %v %+v", err, hits)
	}
}

func TestSearchRequiresRoot(t *testing.T) {
	if _, err := Search(context.Background(), " ", SearchQuery{}); err == nil {
		t.Fatalf("expected error for empty root")
	}
}
