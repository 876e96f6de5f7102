// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package telemetry defines the tracing seam that the coder calls into.
// It intentionally ships no logging backend; wiring a concrete logger is
// an external-collaborator concern, same as file I/O or CLI parsing.
package telemetry

// Phase names one of the coder's state-machine stages.
type Phase string

const (
	PhasePreambleIV  Phase = "preamble_iv"
	PhasePreambleKey Phase = "preamble_key"
	PhasePayload     Phase = "payload"
	PhaseDone        Phase = "done"
)

// TraceFunc receives a phase transition and a count: for the preamble
// and payload phases, the number of symbols processed in the phase that
// just completed; for PhaseDone, the output length in bytes (the
// ciphertext when encoding, the decoded payload when decoding). A nil
// TraceFunc disables
// tracing entirely; callers are never required to supply one.
type TraceFunc func(phase Phase, symbols int)

// Nop is a TraceFunc that discards every event.
func Nop(Phase, int) {}
