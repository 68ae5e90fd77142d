// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package control

// State is the lifecycle phase of a Loop.
type State int32

const (
	// StateInitializing covers discovery and the switch to manual mode.
	StateInitializing State = iota
	// StateRunning means ticks are being executed.
	StateRunning
	// StateDraining means fans are being handed back to the firmware.
	StateDraining
	// StateStopped is terminal.
	StateStopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
