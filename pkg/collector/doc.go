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

// Package collector inspects the host before the daemon takes control of
// the fans.
//
// Two checks run concurrently:
//   - kmod: whether the applesmc and coretemp kernel modules are loaded
//   - systemd: whether another fan daemon (mbpfan, macfanctld, fan2go) is
//     active
//
// Findings are logged as warnings and returned in a Report. Checks that
// cannot run, for example without a system bus, are skipped.
//
// Usage:
//
//	report := collector.NewPreflight().Run(ctx)
//	if len(report.ActiveConflicts()) > 0 {
//	    // another daemon writes the same fan attributes
//	}
package collector
