/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chambermap/internal/config"
	"chambermap/internal/geom"
)

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if code := run(args, &out); code != 0 {
		t.Fatalf("%v exited %d:\n%s", args, code, out.String())
	}
	return out.String()
}

func TestCommandsRoundTrip(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	dir := filepath.Join(t.TempDir(), "keep")

	runOK(t, "init", dir, "Keep")
	out := runOK(t, "draw", dir, "Hall", "0,0", "10,0", "10,10", "0,10")
	if !strings.Contains(out, "Added chamber #0") || !strings.Contains(out, "with 4 walls") {
		t.Fatalf("unexpected draw output:\n%s", out)
	}
	out = runOK(t, "open", dir)
	if !strings.Contains(out, "Opened plan: Keep") || !strings.Contains(out, "walls=4 area=100") {
		t.Fatalf("unexpected open output:\n%s", out)
	}
	out = runOK(t, "inspect", dir, "5,5")
	if !strings.Contains(out, `Inside chamber #0 "Hall"`) {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}
	out = runOK(t, "inspect", dir, "20,20")
	if !strings.Contains(out, "Not inside any chamber") {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}
	runOK(t, "export", dir, "svg", "keep.svg")
	if st, err := os.Stat(filepath.Join(dir, "exports", "keep.svg")); err != nil || st.Size() == 0 {
		t.Fatalf("svg export missing: %v", err)
	}
	out = runOK(t, "index", dir, "hall")
	if !strings.Contains(out, "#0 Hall") || !strings.Contains(out, "1 chamber(s)") {
		t.Fatalf("unexpected index output:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	var out bytes.Buffer
	if code := run([]string{"init"}, &out); code != 2 {
		t.Fatalf("missing args should exit 2, got %d", code)
	}
	if code := run([]string{"open", t.TempDir()}, &out); code != 1 {
		t.Fatalf("opening an empty dir should exit 1, got %d", code)
	}
	if code := run([]string{"bogus"}, &out); code != 2 {
		t.Fatalf("unknown command should exit 2, got %d", code)
	}
	dir := filepath.Join(t.TempDir(), "p")
	runOK(t, "init", dir, "P")
	if code := run([]string{"draw", dir, "Bad", "0,0", "nope"}, &out); code != 1 {
		t.Fatalf("bad vertex should exit 1, got %d", code)
	}
}

func TestParsePoint(t *testing.T) {
	v, err := parsePoint(" 3, -4")
	if err != nil || v != geom.I(3, -4) {
		t.Fatalf("parsePoint: %v %v", v, err)
	}
	for _, bad := range []string{"3", "a,1", "1,2.5", "9999999999,0"} {
		if _, err := parsePoint(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	p, err := parseVec("2.5,0.5")
	if err != nil || p != geom.V(2.5, 0.5) {
		t.Fatalf("parseVec: %v %v", p, err)
	}
}
