// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package connector wires the message translator into an agent session.
//
// The transport (WebSocket plumbing, authentication, reconnects) lives
// outside this package. It hands each received frame to the [Session] and
// delivers whatever frames come back.
//
// # Core Types
//
// [Config] is the YAML configuration. Substitution parameters come from the
// session block and can be overridden per parameter with
// AMSBRIDGE_PARAM_<name> environment variables.
//
// [Session] owns the current [Transformer]. HandleAgentFrame rewrites
// agent frames for the backend, HandleBackendFrame does the reverse, and
// Pipe runs either direction over a newline-delimited JSON stream.
//
// # Admin API
//
// POST /api/reload-params swaps in a translator built from new parameters.
// POST /api/translate?direction=outgoing|incoming translates a frame
// without delivering it, which is useful when debugging rule changes.
package connector
