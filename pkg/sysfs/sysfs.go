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

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxAttrSize bounds a single attribute read. Device attributes are at most
// one page.
const maxAttrSize = 4096

// ReadLine reads the attribute at path and returns its first line with
// surrounding whitespace removed. The file is closed before returning.
func ReadLine(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", path, err)
	}

	if len(b) > maxAttrSize {
		return "", fmt.Errorf("file %q exceeds maximum size of %d bytes", path, maxAttrSize)
	}

	if !utf8.Valid(b) {
		return "", fmt.Errorf("content of file %q is not valid UTF-8", path)
	}

	line, _, _ := strings.Cut(string(b), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("file %q is empty", path)
	}

	return line, nil
}

// ReadInt reads the attribute at path as a base-10 integer.
func ReadInt(path string) (int, error) {
	line, err := ReadLine(path)
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid integer in file %q: %w", path, err)
	}

	return v, nil
}

// WriteInt writes v followed by a newline to the existing attribute at path.
// The file is opened, written once and closed; a failed close is reported
// because sysfs surfaces driver errors there.
func WriteInt(path string, v int) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("failed to open file %q: %w", path, err)
	}

	if _, err := fmt.Fprintf(f, "%d\n", v); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file %q: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file %q: %w", path, err)
	}

	return nil
}

// ParseIndex splits an attribute file name of the form <prefix><index>_<attr>,
// e.g. "temp2_input" with prefix "temp" yields 2 and "input".
func ParseIndex(name, prefix string) (int, string, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, "", false
	}

	num, attr, ok := strings.Cut(rest, "_")
	if !ok || num == "" || attr == "" {
		return 0, "", false
	}

	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 {
		return 0, "", false
	}

	return idx, attr, true
}

// Indices lists dir and returns the distinct indices of entries named
// <prefix><index>_<attr>, sorted ascending. Entries that start with prefix
// but do not parse are returned in malformed.
func Indices(dir, prefix string) (indices []int, malformed []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	seen := make(map[int]struct{})
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		idx, _, ok := ParseIndex(name, prefix)
		if !ok {
			malformed = append(malformed, name)
			continue
		}

		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}

	sort.Ints(indices)
	return indices, malformed, nil
}

// AttrPath joins dir with the attribute file name <prefix><index>_<attr>.
func AttrPath(dir, prefix string, index int, attr string) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d_%s", prefix, index, attr))
}

// maxListSize bounds ReadLines, which serves larger procfs tables.
const maxListSize = 1 << 20

// ReadLines reads the file at path and returns its non-empty lines.
func ReadLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	if len(b) > maxListSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, maxListSize)
	}

	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}

	parts := strings.Split(string(b), "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	return lines, nil
}
