// Copyright 2025 The Rivaas Authors
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

package jsonhook

import (
	"testing"
)

// TestCodec creates a Codec configured for testing. Small limits make
// runaway hooks fail fast.
//
// Example:
//
//	func TestMyHook(t *testing.T) {
//	    codec := jsonhook.TestCodec(t, jsonhook.WithArrayHook(myHook))
//	    // use codec in test
//	}
func TestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	defaultOpts := []Option{
		WithMaxDepth(64),
		WithMaxRestarts(16),
	}

	// Append user-provided options (they will override defaults)
	allOpts := append(defaultOpts, opts...)

	codec, err := New(allOpts...)
	if err != nil {
		t.Fatalf("TestCodec: failed to create codec: %v", err)
	}
	return codec
}

// Recorder collects the values a hook sees. Its Hook method records the
// value and skips, so attaching a Recorder never changes output.
//
// Example:
//
//	rec := &jsonhook.Recorder{}
//	_, err := jsonhook.Encode(v, jsonhook.WithValueHook(rec.Hook))
//	// rec.Values holds every value in visit order
type Recorder struct {
	Values []any
}

// Hook records v and returns ErrSkip.
func (r *Recorder) Hook(v any) (any, error) {
	r.Values = append(r.Values, v)
	return nil, ErrSkip
}

// Reset clears the recorded values.
func (r *Recorder) Reset() {
	r.Values = nil
}
