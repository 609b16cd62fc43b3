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
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// NumberKind is the lexical sub-kind of a number literal.
type NumberKind int

const (
	// NumberInteger is a literal without fraction or exponent, e.g. "7".
	NumberInteger NumberKind = iota

	// NumberFloat is a literal with a fraction or exponent, e.g. "3.5", "1e3".
	NumberFloat

	// NumberNonFinite is NaN, Infinity or -Infinity (lenient mode only).
	NumberNonFinite
)

// String returns the kind name.
func (k NumberKind) String() string {
	switch k {
	case NumberInteger:
		return "integer"
	case NumberFloat:
		return "float"
	case NumberNonFinite:
		return "non-finite"
	default:
		return "unknown"
	}
}

// ClassifyNumber returns the lexical kind of a number literal.
func ClassifyNumber(text string) NumberKind {
	switch text {
	case "NaN", "Infinity", "+Infinity", "-Infinity":
		return NumberNonFinite
	}
	if strings.ContainsAny(text, ".eE") {
		return NumberFloat
	}

	return NumberInteger
}

// Number is a number literal written to the output verbatim.
// Hooks can return it to preserve the exact lexical form of a decoded number.
type Number string

// String returns the literal.
func (n Number) String() string { return string(n) }

// Object is a string-keyed container that preserves insertion order.
// Decoded JSON objects are *Object values; setting an existing key keeps its
// original position and replaces the value.
//
// *Object implements [Mapping], so it encodes as a mapping.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an object from alternating keys and values.
// It panics if a key is not a string or the argument count is odd.
//
// Example:
//
//	obj := jsonhook.ObjectOf("name", "Ada", "age", int64(36))
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("jsonhook.ObjectOf: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("jsonhook.ObjectOf: key %d is %T, not string", i/2, kv[i]))
		}
		o.Set(k, kv[i+1])
	}

	return o
}

// Len returns the number of members.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores v under key.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })

	return true
}

// Fields returns the keys in order.
func (o *Object) Fields() []string {
	return slices.Clone(o.keys)
}

// All iterates members in order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Keys implements [Mapping].
func (o *Object) Keys() []any {
	out := make([]any, len(o.keys))
	for i, k := range o.keys {
		out[i] = k
	}

	return out
}

// Lookup implements [Mapping].
func (o *Object) Lookup(key any) (any, bool) {
	k, ok := key.(string)
	if !ok {
		return nil, false
	}

	return o.Get(k)
}

// Plain converts a decoded or reduced tree into plain Go containers:
// every *Object becomes a map[string]any and every []any is copied with its
// elements converted. Other values are returned unchanged.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		m := make(map[string]any, t.Len())
		for k, val := range t.All() {
			m[k] = Plain(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// FormatFloat formats f the way the encoder writes floats: shortest
// round-trip digits, always float-looking ("1.0", not "1"), exponent form
// outside [1e-6, 1e21), and NaN, Infinity or -Infinity for non-finite values.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// 1e-07 -> 1e-7
		if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}

// parseNumber is the built-in conversion for number literals: int64 for
// integers, *big.Int when they overflow, float64 for everything else.
func parseNumber(text string, kind NumberKind) (any, error) {
	switch kind {
	case NumberNonFinite:
		switch text {
		case "NaN":
			return math.NaN(), nil
		case "-Infinity":
			return math.Inf(-1), nil
		default:
			return math.Inf(1), nil
		}
	case NumberFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil && !isRangeError(err) {
			return nil, &SyntaxError{Offset: -1, Msg: "invalid number " + strconv.Quote(text), Err: err}
		}
		return f, nil
	default:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
		if b, ok := new(big.Int).SetString(text, 10); ok {
			return b, nil
		}
		return nil, &SyntaxError{Offset: -1, Msg: "invalid number " + strconv.Quote(text)}
	}
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// validNumberLiteral reports whether s is a finite JSON number literal.
func validNumberLiteral(s string) bool {
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeError(err) {
		return false
	}

	return !strings.EqualFold(strings.TrimLeft(s, "+-"), "inf") &&
		!strings.EqualFold(strings.TrimLeft(s, "+-"), "infinity") &&
		!strings.EqualFold(s, "nan")
}

// kindOf describes v for error messages and events.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
