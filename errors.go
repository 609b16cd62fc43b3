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
	"errors"
	"fmt"
	"reflect"
)

// ErrSkip is returned by a [Hook] to decline one invocation.
//
// The engine checks for it with [errors.Is] at the hook call site, so hooks may
// wrap it. It is never wrapped into a [*HookError] and never returned to the
// caller of Decode or Encode.
var ErrSkip = errors.New("skip hook")

// Phase sentinels. Every error a decode operation returns once it starts
// reading input matches ErrDecode under [errors.Is]; every error an encode
// operation returns once it starts walking the value matches ErrEncode.
// A [*ConfigError] from invalid options or slots matches neither.
var (
	ErrDecode = errors.New("jsonhook: decode failed")
	ErrEncode = errors.New("jsonhook: encode failed")
)

// Static errors for hook and codec operations.
var (
	ErrInvalidSlot       = errors.New("invalid hook slot")
	ErrInvalidOption     = errors.New("invalid option")
	ErrMaxDepth          = errors.New("exceeded maximum nesting depth")
	ErrMaxRestarts       = errors.New("exceeded maximum hook restarts")
	ErrMaxInputSize      = errors.New("input exceeds maximum size")
	ErrCycle             = errors.New("encountered a cycle")
	ErrOutMustBePointer  = errors.New("out must be a non-nil pointer")
	ErrIncompleteInput   = errors.New("incomplete document")
	ErrUnexpectedEvent   = errors.New("unexpected assembler event")
	ErrMultipleDocuments = errors.New("more than one top-level value")
)

// HookError reports a hook that failed with an error other than [ErrSkip].
//
// Err is the exact value the hook returned (or panicked with, when that value
// is an error), so callers can compare it by identity or inspect it with
// [errors.Is] and [errors.As]:
//
//	var hookErr *jsonhook.HookError
//	if errors.As(err, &hookErr) {
//	    fmt.Printf("%s hook failed at %s: %v\n", hookErr.Slot, hookErr.Path, hookErr.Err)
//	}
type HookError struct {
	Phase Phase  // Pipeline that invoked the hook
	Slot  Slot   // Slot the failing hook was registered in
	Kind  string // Kind of value being processed
	Path  string // JSON pointer of the value being processed ("" for the root)
	Err   error  // Original error
}

// Error returns a formatted error message.
func (e *HookError) Error() string {
	at := ""
	if e.Path != "" {
		at = " at " + e.Path
	}

	return fmt.Sprintf("jsonhook: %s hook %q failed on %s%s: %v", e.Phase, e.Slot, e.Kind, at, e.Err)
}

// Unwrap returns the original hook error.
func (e *HookError) Unwrap() error {
	return e.Err
}

// Is matches the phase sentinel ([ErrDecode] or [ErrEncode]).
func (e *HookError) Is(target error) bool {
	return target == e.Phase.family()
}

// PanicError carries a non-error value a hook panicked with.
type PanicError struct {
	Value any    // Recovered value
	Stack []byte // Stack trace at the point of recovery
}

// Error returns a formatted error message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("hook panicked: %v", e.Value)
}

// SyntaxError reports malformed input from the grammar layer.
type SyntaxError struct {
	Offset int    // Byte offset of the failure, or -1 when unknown
	Msg    string // Description of the failure
	Err    error  // Underlying parser error, if any
}

// Error returns a formatted error message.
func (e *SyntaxError) Error() string {
	if e.Offset < 0 {
		return "jsonhook: syntax error: " + e.Msg
	}

	return fmt.Sprintf("jsonhook: syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns the underlying parser error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is matches [ErrDecode].
func (e *SyntaxError) Is(target error) bool {
	return target == ErrDecode
}

// UnsupportedTypeError is returned when encode reaches a value that no hook
// handled and that has no built-in representation, or a mapping key whose
// type has no default string form.
type UnsupportedTypeError struct {
	Type reflect.Type // Type of the offending value
	Path string       // JSON pointer of the value
	Key  bool         // The value was a mapping key
}

// Error returns a formatted error message.
func (e *UnsupportedTypeError) Error() string {
	what := "type"
	if e.Key {
		what = "key type"
	}
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	if e.Path != "" {
		return fmt.Sprintf("jsonhook: unsupported %s %s at %s", what, name, e.Path)
	}

	return fmt.Sprintf("jsonhook: unsupported %s %s", what, name)
}

// Is matches [ErrEncode].
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrEncode
}

// UnsupportedValueError is returned when encode reaches a value of a supported
// type that cannot be written, such as NaN outside lenient mode or a key hook
// result that is not a string.
type UnsupportedValueError struct {
	Value  string // Text form of the value
	Path   string // JSON pointer of the value
	Reason string // Why the value was rejected
}

// Error returns a formatted error message.
func (e *UnsupportedValueError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jsonhook: unsupported value %s at %s: %s", e.Value, e.Path, e.Reason)
	}

	return fmt.Sprintf("jsonhook: unsupported value %s: %s", e.Value, e.Reason)
}

// Is matches [ErrEncode].
func (e *UnsupportedValueError) Is(target error) bool {
	return target == ErrEncode
}

// LimitError is returned when a configured resource ceiling is exceeded.
// Err is [ErrMaxDepth] or [ErrMaxRestarts].
type LimitError struct {
	Phase Phase
	Limit int
	Path  string
	Err   error
}

// Error returns a formatted error message.
func (e *LimitError) Error() string {
	return fmt.Sprintf("jsonhook: %s: %v (limit %d) at %q", e.Phase, e.Err, e.Limit, e.Path)
}

// Unwrap returns the limit sentinel.
func (e *LimitError) Unwrap() error {
	return e.Err
}

// Is matches the phase sentinel.
func (e *LimitError) Is(target error) bool {
	return target == e.Phase.family()
}

// CycleError is returned when encode finds a container that contains itself.
type CycleError struct {
	Type reflect.Type
	Path string
}

// Error returns a formatted error message.
func (e *CycleError) Error() string {
	return fmt.Sprintf("jsonhook: encountered a cycle via %s at %s", e.Type, e.Path)
}

// Unwrap returns [ErrCycle].
func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// Is matches [ErrEncode].
func (e *CycleError) Is(target error) bool {
	return target == ErrEncode
}

// WriteError is returned when a format writer fails after the encode hooks
// have reduced the value.
type WriteError struct {
	Format string // Output format, e.g. "YAML"
	Err    error  // Writer error
}

// Error returns a formatted error message.
func (e *WriteError) Error() string {
	return fmt.Sprintf("jsonhook: failed to write %s: %v", e.Format, e.Err)
}

// Unwrap returns the writer error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches [ErrEncode].
func (e *WriteError) Is(target error) bool {
	return target == ErrEncode
}

// ConfigError reports an invalid registry operation or codec option. It
// matches neither [ErrDecode] nor [ErrEncode], since no input was read.
type ConfigError struct {
	Field string // Option or argument that was rejected
	Value string // Rejected value, if printable
	Err   error  // Underlying error
}

// Error returns a formatted error message.
func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("jsonhook: invalid %s %q: %v", e.Field, e.Value, e.Err)
	}

	return fmt.Sprintf("jsonhook: invalid %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when [WithSchema] is configured and the input
// document does not satisfy the schema.
type SchemaError struct {
	Err error
}

// Error returns a formatted error message.
func (e *SchemaError) Error() string {
	return "jsonhook: document does not match schema: " + e.Err.Error()
}

// Unwrap returns the validator error.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Is matches [ErrDecode].
func (e *SchemaError) Is(target error) bool {
	return target == ErrDecode
}

// BindError is returned by [DecodeTo] when the decoded tree cannot be mapped
// onto the target, or the target fails struct validation.
type BindError struct {
	Type   reflect.Type // Target type
	Reason string       // "decode" or "validate"
	Err    error        // Underlying error
}

// Error returns a formatted error message.
func (e *BindError) Error() string {
	return fmt.Sprintf("jsonhook: binding %s (%s): %v", e.Type, e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error {
	return e.Err
}

// Is matches [ErrDecode].
func (e *BindError) Is(target error) bool {
	return target == ErrDecode
}

// decodeErrorf builds a decode-family error for grammar-protocol misuse.
func decodeErrorf(sentinel error, format string, args ...any) error {
	return &SyntaxError{Offset: -1, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}
