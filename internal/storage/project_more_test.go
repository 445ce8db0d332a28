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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"chambermap/internal/domain"
)

func TestSaveAsMovesHandle(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, domain.Plan{Name: "Orig", Chambers: []domain.Chamber{}})
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ph.Plan.Name = "Renamed"
	newRoot := filepath.Join(root, "newplan")
	if err := SaveAs(ph, newRoot); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if ph.Root != newRoot || ph.ManifestPath != filepath.Join(newRoot, ManifestFileName) {
		t.Fatalf("ProjectHandle paths not updated: %+v", ph)
	}
	b, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		t.Fatalf("read new manifest: %v", err)
	}
	var got domain.Plan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal new manifest: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("unexpected plan name in new manifest: %q", got.Name)
	}
	if fi, err := os.Stat(filepath.Join(newRoot, "exports")); err != nil || !fi.IsDir() {
		t.Fatalf("exports dir missing in new root")
	}
}

func TestSaveRejectsInvalidHandle(t *testing.T) {
	if err := Save(nil); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	if err := Save(&ProjectHandle{}); err == nil {
		t.Fatalf("expected error for handle without paths")
	}
	if err := SaveAs(&ProjectHandle{}, ""); err == nil {
		t.Fatalf("expected error for empty new root")
	}
}
