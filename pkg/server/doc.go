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

// Package server implements the optional HTTP status server of the daemon.
//
// The server is enabled with --listen (or the listen setting) and only reads
// state: it never changes fan modes or speeds.
//
// # Endpoints
//
//	GET /           - service name, version, loop state and routes
//	GET /health     - liveness, always 200 while the process serves requests
//	GET /ready      - 200 while the control loop is running, 503 otherwise
//	GET /metrics    - Prometheus metrics
//	GET /v1/status  - loop state, peak temperature, sensors and fans
//
// # Middleware
//
// API endpoints under /v1 are wrapped, outermost first, with:
//   - Prometheus request metrics
//   - API version negotiation (Accept: application/vnd.macfand.v1+json)
//   - request IDs (X-Request-Id, generated when missing or not a UUID)
//   - panic recovery
//   - token bucket rate limiting (golang.org/x/time/rate)
//   - debug request logging
//
// # Error Responses
//
// Errors are JSON objects:
//
//	{
//	  "code": "RATE_LIMIT_EXCEEDED",
//	  "message": "Rate limit exceeded",
//	  "details": {"limit": 20, "burst": 40},
//	  "requestId": "4b1c0c8e-...",
//	  "timestamp": "2025-01-01T00:00:00Z",
//	  "retryable": true
//	}
//
// # Usage
//
//	srv := server.New(&server.Config{Address: "127.0.0.1:9101", ...}, loop)
//	g.Go(func() error { return srv.Run(gctx) })
package server
