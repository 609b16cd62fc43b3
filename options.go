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
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Resource limits.
const (
	// DefaultMaxDepth is the default maximum container nesting depth for both
	// decode and encode.
	DefaultMaxDepth = 1000

	// DefaultMaxRestarts is the default maximum number of consecutive
	// hook-driven restarts for a single value during encode.
	DefaultMaxRestarts = 1000

	// DefaultMaxInputSize is the default maximum number of bytes DecodeReader
	// will read (32 MiB).
	DefaultMaxInputSize = 32 << 20
)

// Option configures a [Codec].
type Option func(*config)

// config holds codec configuration.
type config struct {
	lenient          bool
	maxDepth         int
	maxRestarts      int
	maxInputSize     int64
	indent           string
	sortKeys         bool
	escapeNonASCII   bool
	tagName          string
	structValidation bool
	schemaSource     []byte
	schema           *jsonschema.Schema
	events           EventHandler
	hooks            Hooks
	errs             []error
}

func defaultConfig() *config {
	return &config{
		maxDepth:     DefaultMaxDepth,
		maxRestarts:  DefaultMaxRestarts,
		maxInputSize: DefaultMaxInputSize,
		tagName:      "json",
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// validate checks option values and compiles the schema, if any.
func (c *config) validate() error {
	if len(c.errs) > 0 {
		return c.errs[0]
	}
	if c.maxInputSize <= 0 {
		return &ConfigError{Field: "max input size", Value: fmt.Sprint(c.maxInputSize), Err: ErrInvalidOption}
	}
	if c.tagName == "" {
		return &ConfigError{Field: "tag name", Err: ErrInvalidOption}
	}
	if c.schemaSource != nil {
		schema, err := compileSchema(c.schemaSource)
		if err != nil {
			return &ConfigError{Field: "schema", Err: err}
		}
		c.schema = schema
	}

	return nil
}

// WithLenient enables lenient mode.
//
// Decode accepts // and /* */ comments, trailing commas, and the NaN,
// Infinity, +Infinity and -Infinity tokens, which are routed through the
// number hook. Encode writes non-finite floats as NaN, Infinity and
// -Infinity and accepts numeric results from the key hook.
func WithLenient() Option {
	return func(c *config) {
		c.lenient = true
	}
}

// WithMaxDepth sets the maximum container nesting depth.
// When exceeded, the call fails with a [*LimitError] wrapping [ErrMaxDepth].
// A value of zero or less disables the check.
// The default is [DefaultMaxDepth].
//
// Example:
//
//	codec, err := jsonhook.New(jsonhook.WithMaxDepth(64))
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxRestarts sets how many times in a row encode hooks may replace a
// single value before the call fails with a [*LimitError] wrapping
// [ErrMaxRestarts]. A value of zero or less removes the ceiling, in which case
// a hook that always returns a new replaceable value loops forever.
// The default is [DefaultMaxRestarts].
func WithMaxRestarts(n int) Option {
	return func(c *config) {
		c.maxRestarts = n
	}
}

// WithMaxInputSize sets the maximum number of bytes DecodeReader reads.
// Larger inputs fail with a [*SyntaxError] wrapping [ErrMaxInputSize].
func WithMaxInputSize(n int64) Option {
	return func(c *config) {
		c.maxInputSize = n
	}
}

// WithIndent makes Encode write indented output using indent for each level.
func WithIndent(indent string) Option {
	return func(c *config) {
		c.indent = indent
	}
}

// WithSortKeys makes Encode write object members sorted by key instead of in
// container order.
func WithSortKeys() Option {
	return func(c *config) {
		c.sortKeys = true
	}
}

// WithEscapeNonASCII makes Encode escape every non-ASCII rune as \uXXXX,
// using surrogate pairs above the Basic Multilingual Plane.
func WithEscapeNonASCII() Option {
	return func(c *config) {
		c.escapeNonASCII = true
	}
}

// WithSchema validates every decoded document against a JSON Schema before
// any hook runs. The schema is compiled once by [New]; a document that does
// not match fails with a [*SchemaError].
//
// Example:
//
//	codec, err := jsonhook.New(jsonhook.WithSchema([]byte(`{"type": "object"}`)))
func WithSchema(schema []byte) Option {
	return func(c *config) {
		c.schemaSource = schema
	}
}

// WithStructValidation runs go-playground/validator on DecodeTo targets after
// binding.
func WithStructValidation() Option {
	return func(c *config) {
		c.structValidation = true
	}
}

// WithTagName sets the struct tag DecodeTo and StructHook read field names
// from. The default is "json".
func WithTagName(tag string) Option {
	return func(c *config) {
		c.tagName = tag
	}
}

// WithEventHandler sets a custom [EventHandler] for internal operational events.
//
// Example:
//
//	jsonhook.New(jsonhook.WithEventHandler(func(e jsonhook.Event) {
//	    if e.Type == jsonhook.EventError {
//	        failures.Add(1)
//	    }
//	}))
func WithEventHandler(handler EventHandler) Option {
	return func(c *config) {
		c.events = handler
	}
}

// WithLogger sets the logger for internal operational events using the default event handler.
// This is a convenience wrapper around [WithEventHandler] that logs events to the provided [slog.Logger].
//
// Example:
//
//	jsonhook.New(jsonhook.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithHook registers hook in slot. An invalid slot makes [New] fail with a
// [*ConfigError] wrapping [ErrInvalidSlot].
func WithHook(slot Slot, hook Hook) Option {
	return func(c *config) {
		if !c.hooks.set(slot, hook) {
			c.errs = append(c.errs, &ConfigError{Field: "slot", Value: fmt.Sprint(int(slot)), Err: ErrInvalidSlot})
		}
	}
}

// WithNamedHook registers hook in the slot identified by name (see [ParseSlot]).
func WithNamedHook(name string, hook Hook) Option {
	return func(c *config) {
		slot, err := ParseSlot(name)
		if err != nil {
			c.errs = append(c.errs, err)
			return
		}
		c.hooks.set(slot, hook)
	}
}

// WithHooks registers every non-nil hook of h.
//
// Example:
//
//	jsonhook.Decode(data, jsonhook.WithHooks(jsonhook.Hooks{
//	    Array:  sortInts,
//	    Number: keepLiteral,
//	}))
func WithHooks(h Hooks) Option {
	return func(c *config) {
		for _, slot := range Slots() {
			if hook := h.get(slot); hook != nil {
				c.hooks.set(slot, hook)
			}
		}
	}
}

// WithStringHook registers the decode hook for string values.
func WithStringHook(h Hook) Option { return WithHook(SlotString, h) }

// WithFloatHook registers the decode hook for float-looking number literals.
// It receives the literal text.
func WithFloatHook(h Hook) Option { return WithHook(SlotFloat, h) }

// WithNumberHook registers the decode hook for number literals the float
// hook did not handle. It receives the literal text.
func WithNumberHook(h Hook) Option { return WithHook(SlotNumber, h) }

// WithArrayHook registers the decode hook for arrays ([]any).
func WithArrayHook(h Hook) Option { return WithHook(SlotArray, h) }

// WithObjectHook registers the decode hook for objects (*Object).
func WithObjectHook(h Hook) Option { return WithHook(SlotObject, h) }

// WithValueHook registers the encode hook that sees every value first.
func WithValueHook(h Hook) Option { return WithHook(SlotValue, h) }

// WithMappingHook registers the encode hook for mapping-like values.
func WithMappingHook(h Hook) Option { return WithHook(SlotMapping, h) }

// WithKeyHook registers the encode hook that names mapping keys.
func WithKeyHook(h Hook) Option { return WithHook(SlotKey, h) }

// WithSequenceHook registers the encode hook for sequence-like values.
func WithSequenceHook(h Hook) Option { return WithHook(SlotSequence, h) }

// WithBytesHook registers the encode hook for byte sequences.
func WithBytesHook(h Hook) Option { return WithHook(SlotBytes, h) }

// WithDefaultHook registers the encode hook for values with no built-in
// representation.
func WithDefaultHook(h Hook) Option { return WithHook(SlotDefault, h) }
