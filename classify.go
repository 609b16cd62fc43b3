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
	"math/big"
	"reflect"
	"slices"
)

// Mapping is implemented by values the encoder treats as mapping-like.
// Keys returns the keys in the order they are written; Lookup returns the
// value stored under one of them.
//
// Go maps are mapping-like without implementing Mapping; their keys are
// written sorted by their printed form.
type Mapping interface {
	Keys() []any
	Lookup(key any) (any, bool)
}

// Sequence is implemented by values the encoder treats as sequence-like.
//
// Go slices and arrays are sequence-like without implementing Sequence,
// except when their element kind is byte.
type Sequence interface {
	Len() int
	At(i int) any
}

// ByteSequence is implemented by values the encoder treats as byte
// sequences. []byte and byte arrays qualify without implementing it.
type ByteSequence interface {
	Bytes() []byte
}

// Class is the capability class the encoder assigns to a value.
type Class int

const (
	ClassNull Class = iota
	ClassPrimitive
	ClassMapping
	ClassBytes
	ClassSequence
	ClassOpaque
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassNull:
		return "null"
	case ClassPrimitive:
		return "primitive"
	case ClassMapping:
		return "mapping"
	case ClassBytes:
		return "bytes"
	case ClassSequence:
		return "sequence"
	default:
		return "opaque"
	}
}

// Classify reports how the encoder will treat v. Probes run in order:
// null, number types, mapping, byte sequence, sequence, primitive. Anything left is
// opaque, which only the default hook can encode.
func Classify(v any) Class {
	if v == nil {
		return ClassNull
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return ClassNull
		}
	}

	// Number types first: *big.Int has a Bytes method.
	switch v.(type) {
	case json.Number, Number, *big.Int:
		return ClassPrimitive
	}
	if _, ok := v.(Mapping); ok {
		return ClassMapping
	}
	if rv.Kind() == reflect.Map {
		return ClassMapping
	}
	if _, ok := v.(ByteSequence); ok {
		return ClassBytes
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() == reflect.Uint8 {
		return ClassBytes
	}
	if _, ok := v.(Sequence); ok {
		return ClassSequence
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return ClassSequence
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return ClassPrimitive
	}

	return ClassOpaque
}

// asMapping returns the Mapping view of a mapping-like value.
func asMapping(v any) Mapping {
	if m, ok := v.(Mapping); ok {
		return m
	}

	return reflectMap{rv: reflect.ValueOf(v)}
}

// asSequence returns the Sequence view of a sequence-like value.
func asSequence(v any) Sequence {
	if s, ok := v.(Sequence); ok {
		return s
	}

	return reflectSeq{rv: reflect.ValueOf(v)}
}

// asBytes returns the contents of a byte sequence.
func asBytes(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case ByteSequence:
		return b.Bytes()
	}
	rv := reflect.ValueOf(v)
	out := make([]byte, rv.Len())
	for i := range out {
		out[i] = byte(rv.Index(i).Uint())
	}

	return out
}

// byteSeq views bytes as a sequence of small integers.
type byteSeq []byte

func (b byteSeq) Len() int     { return len(b) }
func (b byteSeq) At(i int) any { return int64(b[i]) }

// reflectMap adapts a Go map. Keys are sorted by their printed form so
// output does not depend on map iteration order.
type reflectMap struct {
	rv reflect.Value
}

func (m reflectMap) Keys() []any {
	keys := m.rv.MapKeys()
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k.Interface()
	}
	slices.SortStableFunc(out, func(a, b any) int {
		sa, sb := fmt.Sprint(a), fmt.Sprint(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})

	return out
}

func (m reflectMap) Lookup(key any) (any, bool) {
	kv := reflect.Zero(m.rv.Type().Key())
	if key != nil {
		kv = reflect.ValueOf(key)
		if !kv.Type().AssignableTo(m.rv.Type().Key()) {
			return nil, false
		}
	}
	v := m.rv.MapIndex(kv)
	if !v.IsValid() {
		return nil, false
	}

	return v.Interface(), true
}

// reflectSeq adapts a Go slice or array.
type reflectSeq struct {
	rv reflect.Value
}

func (s reflectSeq) Len() int     { return s.rv.Len() }
func (s reflectSeq) At(i int) any { return s.rv.Index(i).Interface() }

// identity returns a key that identifies the container behind v for cycle
// detection, or false when v cannot be part of a cycle.
func identity(v any) (visitKey, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
		if rv.IsNil() {
			return visitKey{}, false
		}
		return visitKey{ptr: rv.Pointer(), typ: rv.Type()}, true
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return visitKey{}, false
		}
		return visitKey{ptr: rv.Pointer(), typ: rv.Type(), n: rv.Len()}, true
	default:
		return visitKey{}, false
	}
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}
