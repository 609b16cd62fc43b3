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

// Package jsonhook provides a JSON codec whose decode and encode pipelines
// call user hooks at fixed points.
//
// Hooks change how values are built or written without touching the grammar
// or the type mapping. Each hook lives in one [Slot] of a [Registry]; a slot
// holds at most one hook.
//
// # Quick Start
//
//	// Decode: sort every array after its elements are decoded
//	v, err := jsonhook.Decode([]byte(`[[3,1],[2]]`),
//	    jsonhook.WithArrayHook(sortNumbers),
//	)
//	// v == []any{[]any{int64(1), int64(3)}, []any{int64(2)}}
//
//	// Encode: upper-case every key
//	out, err := jsonhook.Encode(map[string]any{"a": 1},
//	    jsonhook.WithKeyHook(func(k any) (any, error) {
//	        return strings.ToUpper(k.(string)), nil
//	    }),
//	)
//	// out == `{"A":1}`
//
// # Slots
//
// Decode slots run bottom-up: a value's hook runs when the value is finished,
// so every child is hooked before its parent.
//
//   - string: every string value (object keys excluded)
//   - float: the literal text of numbers with a fraction or exponent
//   - number: the literal text of numbers the float hook did not handle
//   - array: each []any, after its elements
//   - object: each *Object, after its members
//
// Encode slots run top-down: a container's hooks run before its children are
// visited.
//
//   - value: every value, keys included; a replacement restarts dispatch
//   - mapping: mapping-like values ([Mapping] or Go maps)
//   - key: each mapping key, after the value hook; yields the key name
//   - sequence: sequence-like values ([Sequence], slices, arrays)
//   - bytes: byte sequences ([]byte, [ByteSequence]); unhandled ones continue
//     as sequences of small integers
//   - default: values with no built-in representation
//
// # Skipping
//
// A hook that returns [ErrSkip] declines that one invocation and the codec
// carries on as if the slot were empty:
//
//	jsonhook.WithNumberHook(func(v any) (any, error) {
//	    text := v.(string)
//	    if !strings.HasPrefix(text, "0x") {
//	        return nil, jsonhook.ErrSkip
//	    }
//	    return parseHex(text)
//	})
//
// # Errors
//
// Any other hook error stops the call and is returned as a [*HookError]
// holding the slot, the kind of value, its JSON pointer, and the original
// error. Once a call starts, every decode error matches [ErrDecode] and
// every encode error matches [ErrEncode]. Invalid options are reported
// earlier as a [*ConfigError], which matches neither:
//
//	_, err := codec.Encode(v)
//	if errors.Is(err, jsonhook.ErrEncode) {
//	    var hookErr *jsonhook.HookError
//	    if errors.As(err, &hookErr) {
//	        log.Printf("%s hook failed: %v", hookErr.Slot, hookErr.Err)
//	    }
//	}
//
// # Aliasing
//
// Hooks receive values by alias. A hook that mutates a slice, map or *Object
// and then skips leaves the mutation in place for the default handling that
// follows and for anyone else holding the value.
//
// # Limits
//
// Nesting depth is bounded by [WithMaxDepth], and consecutive encode restarts
// for one value by [WithMaxRestarts]. Both default to 1000 and return a
// [*LimitError] when exceeded. Self-referencing containers fail with a
// [*CycleError].
//
// # Other Formats
//
// The yaml, toml and msgpack sub-packages feed the same decode hooks from
// their formats and write the reduced encode output in them. The proto
// sub-package lets protobuf messages be encoded as mappings.
//
// # Observability
//
// Codec events go to the handler set with [WithEventHandler], or to a slog
// logger with [WithLogger]. The metrics sub-package provides a handler that
// counts them with OpenTelemetry.
package jsonhook
