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

// Package serializer provides encoding of daemon state in multiple formats.
//
// # Supported Formats
//
// JSON:
//   - Machine-parseable, indented representation
//   - Used for the HTTP status API and the discover command
//
// YAML:
//   - Human-readable with preserved structure
//   - gopkg.in/yaml.v3 package
//
// Table:
//   - Flattened FIELD/VALUE rows for terminal viewing
//
// Widget:
//   - Single line produced by the value's MarshalWidget method,
//     e.g. "2000(f1) 1800(f2)", for desktop status bars
//
// # Usage
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, data); err != nil {
//	    return err
//	}
//
// Files that are polled by other programs should be replaced atomically:
//
//	b, err := serializer.Marshal(serializer.FormatWidget, snapshot)
//	...
//	err = serializer.WriteFileAtomic(path, b)
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
package serializer
