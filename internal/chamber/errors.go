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

import "errors"

var (
	// ErrWallNotFound is returned when a wall id is not part of the chamber.
	// Ids go stale across undo/redo, so callers should treat it as recoverable.
	ErrWallNotFound = errors.New("wall not found")
	// ErrDegenerateWall is returned when an edit would create a zero-length wall.
	ErrDegenerateWall = errors.New("edit would create a zero-length wall")
	// ErrBrokenLoop is returned when restoring walls that do not form one closed cycle.
	ErrBrokenLoop = errors.New("walls do not form a closed loop")
	// ErrDuplicateWallID is returned when restoring walls that reuse an id.
	ErrDuplicateWallID = errors.New("duplicate wall id")
)
