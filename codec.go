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
	"io"

	"rivaas.dev/jsonhook/internal/scanner"
)

// Codec decodes and encodes JSON, running the hooks held by its [Registry].
//
// Use [New] or [MustNew] to create a configured Codec, or use the
// package-level functions ([Decode], [Encode], etc.) for one-shot calls.
//
// A Codec is not safe for concurrent use: its registry is plain mutable
// state read by every call. Give each goroutine its own Codec.
//
// Example:
//
//	codec := jsonhook.MustNew(
//	    jsonhook.WithArrayHook(sortNumbers),
//	    jsonhook.WithMaxDepth(64),
//	)
//
//	v, err := codec.Decode(data)
//
//	// Hooks can be changed between calls
//	codec.Registry().Clear(jsonhook.SlotArray)
type Codec struct {
	cfg      *config
	registry *Registry
}

// New creates a [Codec] with the given options.
// Returns an error if configuration is invalid.
//
// Example:
//
//	codec, err := jsonhook.New(
//	    jsonhook.WithLenient(),
//	    jsonhook.WithKeyHook(upperKey),
//	)
//	if err != nil {
//	    return fmt.Errorf("failed to create codec: %w", err)
//	}
func New(opts ...Option) (*Codec, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Codec{cfg: cfg, registry: &Registry{hooks: cfg.hooks}}, nil
}

// MustNew creates a [Codec] with the given options.
// Panics if configuration is invalid.
func MustNew(opts ...Option) *Codec {
	c, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("jsonhook.MustNew: %v", err))
	}

	return c
}

// Registry returns the codec's hook registry. Changes made through it apply
// to every later call on the codec.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Lenient reports whether the codec was created with [WithLenient].
func (c *Codec) Lenient() bool {
	return c.cfg.lenient
}

// Indent returns the indentation configured with [WithIndent].
func (c *Codec) Indent() string {
	return c.cfg.indent
}

// Decode parses one JSON document and runs the decode hooks bottom-up.
//
// Objects decode to *Object, arrays to []any, and numbers to int64,
// *big.Int or float64 unless a hook says otherwise.
func (c *Codec) Decode(data []byte) (any, error) {
	if c.cfg.schema != nil {
		if err := c.validateSchema(data); err != nil {
			c.emitError(MessageDecodeFailed, "error", err)
			return nil, err
		}
	}

	v, err := c.decode(data, c.NewAssembler())
	if err != nil {
		c.emitError(MessageDecodeFailed, "error", err)
		return nil, err
	}

	return v, nil
}

func (c *Codec) decode(data []byte, a *Assembler) (any, error) {
	err := scanner.Parse(data, scanHandler{a}, scanner.Options{Lenient: c.cfg.lenient})
	if err != nil {
		var se *scanner.Error
		if errors.As(err, &se) {
			return nil, &SyntaxError{Offset: se.Offset, Msg: se.Msg}
		}
		return nil, err
	}

	return a.Result()
}

// DecodeString is [Codec.Decode] for string input.
func (c *Codec) DecodeString(s string) (any, error) {
	return c.Decode([]byte(s))
}

// DecodeReader reads r to the end and decodes it. Inputs larger than the
// configured maximum fail with a [*SyntaxError] wrapping [ErrMaxInputSize].
func (c *Codec) DecodeReader(r io.Reader) (any, error) {
	data, err := c.ReadInput(r)
	if err != nil {
		return nil, err
	}

	return c.Decode(data)
}

// ReadInput reads r to the end, failing with a [*SyntaxError] wrapping
// [ErrMaxInputSize] once more than the configured maximum is read. Format
// sub-packages use it for their own readers.
func (c *Codec) ReadInput(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.cfg.maxInputSize+1))
	if err != nil {
		return nil, &SyntaxError{Offset: -1, Msg: "read failed", Err: err}
	}
	if int64(len(data)) > c.cfg.maxInputSize {
		err = decodeErrorf(ErrMaxInputSize, "input exceeds %d bytes", c.cfg.maxInputSize)
		c.emitError(MessageDecodeFailed, "error", err)
		return nil, err
	}

	return data, nil
}

// Reduce runs the encode hooks over v top-down and returns the resulting
// tree, made only of nil, bool, string, int64, uint64, float64, *big.Int,
// json.Number, Number, []any and *Object values. Format writers consume it.
func (c *Codec) Reduce(v any) (any, error) {
	out, err := newEncodeState(c).reduce(v)
	if err != nil {
		c.emitError(MessageEncodeFailed, "error", err)
		return nil, err
	}

	return out, nil
}

// Encode runs the encode hooks over v and writes the result as JSON.
func (c *Codec) Encode(v any) ([]byte, error) {
	reduced, err := c.Reduce(v)
	if err != nil {
		return nil, err
	}

	return c.write(reduced)
}

// EncodeString is [Codec.Encode] returning a string.
func (c *Codec) EncodeString(v any) (string, error) {
	out, err := c.Encode(v)
	return string(out), err
}

// Decode decodes data with a codec built from opts.
//
// Example:
//
//	v, err := jsonhook.Decode(data, jsonhook.WithArrayHook(sortNumbers))
func Decode(data []byte, opts ...Option) (any, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return c.Decode(data)
}

// DecodeString decodes s with a codec built from opts.
func DecodeString(s string, opts ...Option) (any, error) {
	return Decode([]byte(s), opts...)
}

// DecodeReader decodes the contents of r with a codec built from opts.
func DecodeReader(r io.Reader, opts ...Option) (any, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return c.DecodeReader(r)
}

// Encode encodes v with a codec built from opts.
//
// Example:
//
//	out, err := jsonhook.Encode(v, jsonhook.WithKeyHook(upperKey))
func Encode(v any, opts ...Option) ([]byte, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return c.Encode(v)
}

// EncodeString encodes v with a codec built from opts.
func EncodeString(v any, opts ...Option) (string, error) {
	out, err := Encode(v, opts...)
	return string(out), err
}

// Reduce reduces v with a codec built from opts.
func Reduce(v any, opts ...Option) (any, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return c.Reduce(v)
}

// scanHandler feeds scanner events to an Assembler.
type scanHandler struct {
	a *Assembler
}

func (h scanHandler) BeginArray() error { return h.a.BeginArray() }
func (h scanHandler) EndArray() error { return h.a.EndArray() }
func (h scanHandler) BeginObject() error { return h.a.BeginObject() }
func (h scanHandler) Key(key string) error { return h.a.Key(key) }
func (h scanHandler) EndObject() error { return h.a.EndObject() }
func (h scanHandler) String(s string) error { return h.a.String(s) }
func (h scanHandler) Bool(b bool) error { return h.a.Bool(b) }
func (h scanHandler) Null() error { return h.a.Null() }

func (h scanHandler) Number(text string, kind scanner.Kind) error {
	switch kind {
	case scanner.Float:
		return h.a.Number(text, NumberFloat)
	case scanner.NonFinite:
		return h.a.Number(text, NumberNonFinite)
	default:
		return h.a.Number(text, NumberInteger)
	}
}
