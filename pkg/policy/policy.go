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

// Package policy maps a peak temperature to a fan speed target.
//
// Between temp_high and temp_max the speed increase per degree grows with
// each degree: the target after r degrees is min + step*r(r+1)/2, where step
// is the fan's range divided by the n-th triangular number,
// n = temp_max - temp_high. Fans stay at their minimum up to temp_high and
// run at their maximum from temp_max on.
package policy

import "github.com/Hipuranyhou/macfand/pkg/config"

// Triangular returns n(n+1)/2.
func Triangular(n int) int {
	return n * (n + 1) / 2
}

// Step returns the speed increment per triangular rank for a fan with the
// given range. The calibration must be valid, so the denominator is positive.
func Step(minSpeed, maxSpeed int, cal config.Calibration) int {
	return (maxSpeed - minSpeed) / Triangular(cal.Band())
}

// Target returns the speed for temperature t. The result is monotonically
// non-decreasing in t and always within [minSpeed, maxSpeed].
func Target(t, minSpeed, maxSpeed, step int, cal config.Calibration) int {
	switch {
	case t <= cal.TempHigh:
		return minSpeed
	case t >= cal.TempMax:
		return maxSpeed
	}

	r := t - cal.TempHigh
	return clamp(minSpeed+step*Triangular(r), minSpeed, maxSpeed)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
