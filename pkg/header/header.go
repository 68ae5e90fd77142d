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

// Package header provides the common envelope of documents printed by the
// command line.
package header

import "time"

// APIVersion is the schema version of every document.
const APIVersion = "macfand/v1"

// Kind names the type of a document.
type Kind string

const (
	// KindDiscovery is the output of the discover command.
	KindDiscovery Kind = "Discovery"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// Header contains versioning information and metadata of a document.
type Header struct {
	Kind       Kind              `json:"kind" yaml:"kind"`
	APIVersion string            `json:"apiVersion" yaml:"apiVersion"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		h.Metadata[key] = value
	}
}

// New returns a header of kind with the current API version and a created
// timestamp in metadata.
func New(kind Kind, opts ...Option) Header {
	h := Header{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata: map[string]string{
			"created": time.Now().UTC().Format(time.RFC3339),
		},
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}
