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

// Package toml runs jsonhook hooks over TOML documents.
//
// Decode parses TOML with github.com/BurntSushi/toml and replays the
// document to a [jsonhook.Assembler] in source key order. Integers go to the
// number hook, floats to the float hook, and date-times decode as RFC 3339
// strings. Encode reduces a value with the encode hooks and writes the result
// as TOML; the top-level value must reduce to an object.
//
// Example:
//
//	v, err := toml.Decode(body, toml.WithCodecOptions(
//	    jsonhook.WithObjectHook(applyDefaults),
//	))
package toml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"rivaas.dev/jsonhook"
)

// ErrTopLevelTable is returned by Encode when the reduced value is not an
// object.
var ErrTopLevelTable = errors.New("toml: top-level value must be a table")

// Option configures TOML decoding and encoding.
type Option func(*config)

// config holds TOML-specific configuration.
type config struct {
	codec     *jsonhook.Codec
	codecOpts []jsonhook.Option
	indent    string
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

// WithIndent sets the indentation Encode uses for nested tables.
// The default is two spaces.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{indent: "  "}
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

// Decode parses a TOML document and runs the codec's decode hooks.
// The result is an *jsonhook.Object unless a hook replaces it.
func Decode(data []byte, opts ...Option) (any, error) {
	cfg := applyOptions(opts)
	codec, err := cfg.newCodec()
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, syntaxError(err)
	}

	r := &replayer{a: codec.NewAssembler(), order: keyOrder(md.Keys())}
	if err = r.table(nil, doc); err != nil {
		return nil, err
	}

	return r.a.Result()
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

func syntaxError(err error) error {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		return &jsonhook.SyntaxError{Offset: perr.Position.Start, Msg: perr.Message, Err: err}
	}

	return &jsonhook.SyntaxError{Offset: -1, Msg: err.Error(), Err: err}
}

// keyOrder maps each table path to its child names in source order.
// Array-of-table elements share one entry, since keys carry no index.
func keyOrder(keys []toml.Key) map[string][]string {
	order := make(map[string][]string)
	for _, k := range keys {
		if len(k) == 0 {
			continue
		}
		parent := strings.Join(k[:len(k)-1], "\x00")
		name := k[len(k)-1]
		if !slices.Contains(order[parent], name) {
			order[parent] = append(order[parent], name)
		}
	}

	return order
}

// replayer feeds a decoded TOML tree to an Assembler.
type replayer struct {
	a     *jsonhook.Assembler
	order map[string][]string
}

func (r *replayer) table(path []string, t map[string]any) error {
	if err := r.a.BeginObject(); err != nil {
		return err
	}
	for _, name := range r.names(path, t) {
		if err := r.a.Key(name); err != nil {
			return err
		}
		if err := r.value(append(slices.Clip(path), name), t[name]); err != nil {
			return err
		}
	}

	return r.a.EndObject()
}

// names returns the keys of t in source order, followed by any key the
// metadata did not list, sorted.
func (r *replayer) names(path []string, t map[string]any) []string {
	out := make([]string, 0, len(t))
	for _, name := range r.order[strings.Join(path, "\x00")] {
		if _, ok := t[name]; ok {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range t {
		if !slices.Contains(out, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)

	return append(out, rest...)
}

func (r *replayer) value(path []string, v any) error {
	switch t := v.(type) {
	case map[string]any:
		return r.table(path, t)
	case []map[string]any:
		if err := r.a.BeginArray(); err != nil {
			return err
		}
		for _, e := range t {
			if err := r.table(path, e); err != nil {
				return err
			}
		}
		return r.a.EndArray()
	case []any:
		if err := r.a.BeginArray(); err != nil {
			return err
		}
		for _, e := range t {
			if err := r.value(path, e); err != nil {
				return err
			}
		}
		return r.a.EndArray()
	case string:
		return r.a.String(t)
	case bool:
		return r.a.Bool(t)
	case int64:
		return r.a.Number(strconv.FormatInt(t, 10), jsonhook.NumberInteger)
	case float64:
		switch {
		case math.IsNaN(t):
			return r.a.Number("NaN", jsonhook.NumberNonFinite)
		case math.IsInf(t, 1):
			return r.a.Number("Infinity", jsonhook.NumberNonFinite)
		case math.IsInf(t, -1):
			return r.a.Number("-Infinity", jsonhook.NumberNonFinite)
		}
		return r.a.Number(jsonhook.FormatFloat(t), jsonhook.NumberFloat)
	case time.Time:
		return r.a.String(t.Format(time.RFC3339Nano))
	default:
		return &jsonhook.SyntaxError{Offset: -1, Msg: fmt.Sprintf("unsupported TOML value %T", v)}
	}
}

// Encode reduces v with the codec's encode hooks and writes it as TOML.
// Null object members are omitted, since TOML has no null.
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
	obj, ok := reduced.(*jsonhook.Object)
	if !ok {
		return nil, &jsonhook.UnsupportedValueError{Value: fmt.Sprintf("%T", reduced), Reason: ErrTopLevelTable.Error()}
	}
	doc, err := toTOML(obj)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = cfg.indent
	if err = enc.Encode(doc); err != nil {
		return nil, &jsonhook.WriteError{Format: "TOML", Err: err}
	}

	return buf.Bytes(), nil
}

// toTOML converts a reduced tree into values the TOML encoder accepts.
func toTOML(v any) (any, error) {
	switch t := v.(type) {
	case *jsonhook.Object:
		m := make(map[string]any, t.Len())
		for k, e := range t.All() {
			if e == nil {
				continue
			}
			conv, err := toTOML(e)
			if err != nil {
				return nil, err
			}
			m[k] = conv
		}
		return m, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			if e == nil {
				return nil, &jsonhook.UnsupportedValueError{Value: "null", Reason: "TOML arrays cannot hold null"}
			}
			conv, err := toTOML(e)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, &jsonhook.UnsupportedValueError{Value: strconv.FormatUint(t, 10), Reason: "TOML integers are 64-bit signed"}
		}
		return int64(t), nil
	case *big.Int:
		if !t.IsInt64() {
			return nil, &jsonhook.UnsupportedValueError{Value: t.String(), Reason: "TOML integers are 64-bit signed"}
		}
		return t.Int64(), nil
	case json.Number:
		return numberValue(string(t))
	case jsonhook.Number:
		return numberValue(string(t))
	default:
		return v, nil
	}
}

func numberValue(text string) (any, error) {
	if jsonhook.ClassifyNumber(text) == jsonhook.NumberInteger {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
		return nil, &jsonhook.UnsupportedValueError{Value: text, Reason: "TOML integers are 64-bit signed"}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, &jsonhook.UnsupportedValueError{Value: text, Reason: "invalid number literal"}
	}

	return f, nil
}
