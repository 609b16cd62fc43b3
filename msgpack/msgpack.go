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

// Package msgpack runs jsonhook hooks over MessagePack data.
//
// Decode walks the MessagePack stream with github.com/vmihailenco/msgpack/v5,
// peeking at each wire code, and feeds a [jsonhook.Assembler]: integer codes
// go to the number hook, float codes to the float hook, and maps and arrays
// to the object and array hooks after their members. Map keys are turned
// into strings; binary values decode as base64 strings and timestamps as
// RFC 3339 strings. Encode reduces a value with the encode hooks and writes
// it as MessagePack, keeping object member order.
package msgpack

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/spf13/cast"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"rivaas.dev/jsonhook"
)

// Option configures MessagePack decoding and encoding.
type Option func(*config)

// config holds MessagePack-specific configuration.
type config struct {
	codec         *jsonhook.Codec
	codecOpts     []jsonhook.Option
	compactFloats bool
	allowTrailing bool
}

// WithCodec runs the hooks and limits of an existing codec.
// It takes precedence over [WithCodecOptions].
func WithCodec(c *jsonhook.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithCodecOptions builds the codec from jsonhook options.
func WithCodecOptions(opts ...jsonhook.Option) Option {
	return func(cfg *config) {
		cfg.codecOpts = append(cfg.codecOpts, opts...)
	}
}

// WithCompactFloats makes Encode write floats that fit in 32 bits as float32.
func WithCompactFloats() Option {
	return func(cfg *config) {
		cfg.compactFloats = true
	}
}

// WithAllowTrailing lets Decode ignore bytes after the first value.
func WithAllowTrailing() Option {
	return func(cfg *config) {
		cfg.allowTrailing = true
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func (cfg *config) newCodec() (*jsonhook.Codec, error) {
	if cfg.codec != nil {
		return cfg.codec, nil
	}

	return jsonhook.New(cfg.codecOpts...)
}

// Decode reads one MessagePack value and runs the codec's decode hooks.
//
// Example:
//
//	v, err := msgpack.Decode(body, msgpack.WithCodecOptions(
//	    jsonhook.WithNumberHook(keepLiteral),
//	))
func Decode(data []byte, opts ...Option) (any, error) {
	cfg := applyOptions(opts)
	codec, err := cfg.newCodec()
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(data)
	w := &walker{d: msgpack.NewDecoder(r), a: codec.NewAssembler(), size: len(data), r: r}
	if err = w.value(); err != nil {
		return nil, err
	}
	if !cfg.allowTrailing && r.Len() > 0 {
		return nil, w.errorf("%d trailing bytes after value", r.Len())
	}

	return w.a.Result()
}

// DecodeReader reads r to the end and decodes it. Input beyond the codec's
// maximum size (see [jsonhook.WithMaxInputSize]) fails before parsing.
func DecodeReader(r io.Reader, opts ...Option) (any, error) {
	codec, err := applyOptions(opts).newCodec()
	if err != nil {
		return nil, err
	}
	data, err := codec.ReadInput(r)
	if err != nil {
		return nil, err
	}

	return Decode(data, append(opts[:len(opts):len(opts)], WithCodec(codec))...)
}

// walker replays a MessagePack stream to an Assembler.
type walker struct {
	d    *msgpack.Decoder
	a    *jsonhook.Assembler
	r    *bytes.Reader
	size int
}

func (w *walker) offset() int {
	return w.size - w.r.Len()
}

func (w *walker) errorf(format string, args ...any) error {
	return &jsonhook.SyntaxError{Offset: w.offset(), Msg: fmt.Sprintf(format, args...)}
}

func (w *walker) wrap(err error) error {
	return &jsonhook.SyntaxError{Offset: w.offset(), Msg: err.Error(), Err: err}
}

func (w *walker) value() error {
	c, err := w.d.PeekCode()
	if err != nil {
		return w.wrap(err)
	}

	switch {
	case c == msgpcode.Nil:
		if err = w.d.DecodeNil(); err != nil {
			return w.wrap(err)
		}
		return w.a.Null()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := w.d.DecodeBool()
		if err != nil {
			return w.wrap(err)
		}
		return w.a.Bool(b)
	case c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64:
		u, err := w.d.DecodeUint64()
		if err != nil {
			return w.wrap(err)
		}
		return w.a.Number(strconv.FormatUint(u, 10), jsonhook.NumberInteger)
	case msgpcode.IsFixedNum(c) ||
		c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		i, err := w.d.DecodeInt64()
		if err != nil {
			return w.wrap(err)
		}
		return w.a.Number(strconv.FormatInt(i, 10), jsonhook.NumberInteger)
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := w.d.DecodeFloat64()
		if err != nil {
			return w.wrap(err)
		}
		return w.float(f)
	case msgpcode.IsString(c):
		s, err := w.d.DecodeString()
		if err != nil {
			return w.wrap(err)
		}
		return w.a.String(s)
	case msgpcode.IsBin(c):
		b, err := w.d.DecodeBytes()
		if err != nil {
			return w.wrap(err)
		}
		return w.a.String(base64.StdEncoding.EncodeToString(b))
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		return w.array()
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return w.object()
	case msgpcode.IsExt(c):
		v, err := w.d.DecodeInterface()
		if err != nil {
			return w.wrap(err)
		}
		if t, ok := v.(time.Time); ok {
			return w.a.String(t.UTC().Format(time.RFC3339Nano))
		}
		return w.errorf("unsupported extension value %T", v)
	default:
		return w.errorf("invalid code 0x%02x", c)
	}
}

func (w *walker) float(f float64) error {
	switch {
	case math.IsNaN(f):
		return w.a.Number("NaN", jsonhook.NumberNonFinite)
	case math.IsInf(f, 1):
		return w.a.Number("Infinity", jsonhook.NumberNonFinite)
	case math.IsInf(f, -1):
		return w.a.Number("-Infinity", jsonhook.NumberNonFinite)
	}

	return w.a.Number(jsonhook.FormatFloat(f), jsonhook.NumberFloat)
}

func (w *walker) array() error {
	n, err := w.d.DecodeArrayLen()
	if err != nil {
		return w.wrap(err)
	}
	if n < 0 {
		return w.a.Null()
	}
	if err = w.a.BeginArray(); err != nil {
		return err
	}
	for range n {
		if err = w.value(); err != nil {
			return err
		}
	}

	return w.a.EndArray()
}

func (w *walker) object() error {
	n, err := w.d.DecodeMapLen()
	if err != nil {
		return w.wrap(err)
	}
	if n < 0 {
		return w.a.Null()
	}
	if err = w.a.BeginObject(); err != nil {
		return err
	}
	for range n {
		key, err := w.key()
		if err != nil {
			return err
		}
		if err = w.a.Key(key); err != nil {
			return err
		}
		if err = w.value(); err != nil {
			return err
		}
	}

	return w.a.EndObject()
}

// key reads a map key and converts scalar keys to their string form.
func (w *walker) key() (string, error) {
	k, err := w.d.DecodeInterfaceLoose()
	if err != nil {
		return "", w.wrap(err)
	}
	switch t := k.(type) {
	case []byte:
		return string(t), nil
	case float64:
		return jsonhook.FormatFloat(t), nil
	case nil:
		return "null", nil
	}
	s, err := cast.ToStringE(k)
	if err != nil {
		return "", w.errorf("unsupported map key %T", k)
	}

	return s, nil
}

// Encode reduces v with the codec's encode hooks and writes it as
// MessagePack.
//
// Example:
//
//	out, err := msgpack.Encode(event, msgpack.WithCodecOptions(
//	    jsonhook.WithDefaultHook(jsonhook.StructHook),
//	))
func Encode(v any, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	codec, err := cfg.newCodec()
	if err != nil {
		return nil, err
	}

	reduced, err := codec.Reduce(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactFloats(cfg.compactFloats)
	if err = write(enc, reduced); err != nil {
		if !errors.Is(err, jsonhook.ErrEncode) {
			err = &jsonhook.WriteError{Format: "MessagePack", Err: err}
		}
		return nil, err
	}

	return buf.Bytes(), nil
}

// write serializes a reduced tree, keeping object member order.
func write(enc *msgpack.Encoder, v any) error {
	switch t := v.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(t)
	case string:
		return enc.EncodeString(t)
	case int64:
		return enc.EncodeInt(t)
	case uint64:
		return enc.EncodeUint(t)
	case float64:
		return enc.EncodeFloat64(t)
	case *big.Int:
		switch {
		case t.IsInt64():
			return enc.EncodeInt(t.Int64())
		case t.IsUint64():
			return enc.EncodeUint(t.Uint64())
		}
		return &jsonhook.UnsupportedValueError{Value: t.String(), Reason: "MessagePack integers are 64-bit"}
	case json.Number:
		return writeNumber(enc, string(t))
	case jsonhook.Number:
		return writeNumber(enc, string(t))
	case []any:
		if err := enc.EncodeArrayLen(len(t)); err != nil {
			return err
		}
		for _, e := range t {
			if err := write(enc, e); err != nil {
				return err
			}
		}
		return nil
	case *jsonhook.Object:
		if err := enc.EncodeMapLen(t.Len()); err != nil {
			return err
		}
		for k, e := range t.All() {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := write(enc, e); err != nil {
				return err
			}
		}
		return nil
	default:
		return &jsonhook.UnsupportedValueError{Value: fmt.Sprintf("%T", v), Reason: "not a reduced value"}
	}
}

func writeNumber(enc *msgpack.Encoder, text string) error {
	if jsonhook.ClassifyNumber(text) == jsonhook.NumberInteger {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return enc.EncodeInt(i)
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return enc.EncodeUint(u)
		}
		return &jsonhook.UnsupportedValueError{Value: text, Reason: "MessagePack integers are 64-bit"}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !math.IsInf(f, 0) {
		return &jsonhook.UnsupportedValueError{Value: text, Reason: "invalid number literal"}
	}

	return enc.EncodeFloat64(f)
}
