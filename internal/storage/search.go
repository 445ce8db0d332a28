/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chambermap/internal/geom"
)

// SearchQuery describes a chamber lookup.
// Text uses SQLite FTS5 syntax over chamber names and notes (simple terms, phrases in quotes, AND/OR/NOT).
// Hidden chambers are skipped unless IncludeHidden is set.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text          string
	IncludeHidden bool
	Limit         int
	Offset        int
}

// ChamberHit is one indexed chamber.
// Box and Label are nil for chambers without walls or without an interior label point.
// Snippet is a highlighted excerpt using [ ] markers when FTS text is used.
type ChamberHit struct {
	ID        uint32
	Name      string
	Notes     string
	Hidden    bool
	WallCount int
	Area      float64
	Box       *geom.IBox
	Label     *geom.Vec
	Snippet   string
}

// Search opens the plan's index and runs SearchChambers.
func Search(ctx context.Context, root string, q SearchQuery) ([]ChamberHit, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("plan root is required")
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return SearchChambers(ctx, db, q)
}

const hitColumns = "c.id, c.name, c.notes, c.hidden, c.wall_count, c.area, c.min_x, c.min_y, c.max_x, c.max_y, c.label_x, c.label_y"

// SearchChambers performs full-text search over chamber names and notes.
// When q.Text is empty, it lists chambers ordered by id.
func SearchChambers(ctx context.Context, db *sql.DB, q SearchQuery) ([]ChamberHit, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT " + hitColumns + ", snippet(fts_chambers, -1, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_chambers JOIN chambers c ON fts_chambers.rowid = c.id\n")
		sb.WriteString("WHERE fts_chambers MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT " + hitColumns + ", ''\nFROM chambers c\nWHERE 1=1\n")
	}
	if !q.IncludeHidden {
		sb.WriteString(" AND c.hidden = 0\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY c.id\nLIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	return scanHits(rows, true)
}

// ChambersInBox returns the chambers whose bounding box overlaps box, ordered by id.
func ChambersInBox(ctx context.Context, db *sql.DB, box geom.IBox) ([]ChamberHit, error) {
	q := `SELECT ` + hitColumns + `
		FROM chambers c
		WHERE c.min_x IS NOT NULL
		  AND c.max_x >= ? AND c.min_x <= ?
		  AND c.max_y >= ? AND c.min_y <= ?
		ORDER BY c.id`
	rows, err := db.QueryContext(ctx, q, box.Min.X, box.Max.X, box.Min.Y, box.Max.Y)
	if err != nil {
		return nil, fmt.Errorf("box query: %w", err)
	}
	defer rows.Close()
	return scanHits(rows, false)
}

func scanHits(rows *sql.Rows, withSnippet bool) ([]ChamberHit, error) {
	var out []ChamberHit
	for rows.Next() {
		var h ChamberHit
		var minX, minY, maxX, maxY sql.NullInt64
		var lx, ly sql.NullFloat64
		var sn sql.NullString
		dest := []any{&h.ID, &h.Name, &h.Notes, &h.Hidden, &h.WallCount, &h.Area, &minX, &minY, &maxX, &maxY, &lx, &ly}
		if withSnippet {
			dest = append(dest, &sn)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if minX.Valid && minY.Valid && maxX.Valid && maxY.Valid {
			h.Box = &geom.IBox{
				Min: geom.I(int32(minX.Int64), int32(minY.Int64)),
				Max: geom.I(int32(maxX.Int64), int32(maxY.Int64)),
			}
		}
		if lx.Valid && ly.Valid {
			p := geom.V(lx.Float64, ly.Float64)
			h.Label = &p
		}
		h.Snippet = sn.String
		out = append(out, h)
	}
	return out, rows.Err()
}
