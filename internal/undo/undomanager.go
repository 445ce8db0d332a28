/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob for one chamber.
// Blob content is opaque to the manager; size is estimated as len(Blob).
// TS is when the snapshot was captured, Op names the edit that followed it.
type Snapshot struct {
	Chamber uint32
	Op      string
	Blob    []byte
	TS      time.Time

	// sealed entries were parked by Redo and never absorb a later push.
	sealed bool
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerChamber limits number of snapshots per chamber kept in memory (0 means unlimited).
	MaxPerChamber int
	// MinInterval coalesces edits on the same chamber captured within the interval:
	// the older pre-state is kept so one undo reverts the whole burst.
	// Zero selects the default, a negative value disables coalescing.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per chamber with performance safeguards.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-chamber stacks
	undo map[uint32][]Snapshot
	redo map[uint32][]Snapshot
	// accounting, undo stacks only
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[uint32][]Snapshot), redo: make(map[uint32][]Snapshot)}
}

// PushSnapshot records the state of a chamber before an edit. Within MinInterval
// of the last push for the same chamber the new snapshot is dropped and the
// older one kept, unless the top entry was parked there by Redo.
// Clears the redo stack for that chamber.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Any new change invalidates redo for the chamber
	m.redo[s.Chamber] = nil
	stack := m.undo[s.Chamber]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		last := stack[n-1]
		if !last.sealed && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: keep the older pre-state, extend its window
			stack[n-1].TS = s.TS
			return
		}
	}
	m.undo[s.Chamber] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Chamber)
}

// Undo pops the last pre-state of a chamber and parks current on the redo
// stack. The caller restores the returned snapshot.
func (m *Manager) Undo(chamber uint32, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[chamber]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[chamber] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	current.Chamber = chamber
	current.Op = s.Op
	m.redo[chamber] = append(m.redo[chamber], current)
	return s, true
}

// Redo pops from redo and parks current back on the undo stack.
func (m *Manager) Redo(chamber uint32, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[chamber]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[chamber] = r[:len(r)-1]
	current.Chamber = chamber
	current.Op = s.Op
	current.sealed = true
	m.undo[chamber] = append(m.undo[chamber], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(chamber)
	return s, true
}

// CanUndo reports whether the chamber has undo history.
func (m *Manager) CanUndo(chamber uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[chamber]) > 0
}

// CanRedo reports whether the chamber has redo history.
func (m *Manager) CanRedo(chamber uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[chamber]) > 0
}

// ClearChamber clears undo/redo stacks for a chamber to free memory.
func (m *Manager) ClearChamber(chamber uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[chamber] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, chamber)
	delete(m.redo, chamber)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, chambers int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chambers = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, chambers, totalSnapshots
}

func (m *Manager) enforceCapsLocked(chamber uint32) {
	// Per-chamber depth cap
	if m.cfg.MaxPerChamber > 0 {
		stack := m.undo[chamber]
		if len(stack) > m.cfg.MaxPerChamber {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerChamber
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[chamber] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all chambers
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		var oldest uint32
		found := false
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = id, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldest]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldest] = stack[1:]
		if len(m.undo[oldest]) == 0 {
			delete(m.undo, oldest)
		}
	}
}
