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
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// encodeState carries one top-down traversal.
type encodeState struct {
	c        *Codec
	path     []string
	depth    int
	visiting map[visitKey]struct{}
}

func newEncodeState(c *Codec) *encodeState {
	return &encodeState{c: c, visiting: make(map[visitKey]struct{})}
}

func (e *encodeState) pointer() string {
	if len(e.path) == 0 {
		return ""
	}

	return "/" + strings.Join(e.path, "/")
}

// restart counts one hook-driven restart for the current value.
func (e *encodeState) restart(n *int) error {
	*n++
	if limit := e.c.cfg.maxRestarts; limit > 0 && *n > limit {
		err := &LimitError{Phase: PhaseEncode, Limit: limit, Path: e.pointer(), Err: ErrMaxRestarts}
		e.c.emitWarning(MessageRestartsExceeded, "limit", limit, "path", err.Path)
		return err
	}

	return nil
}

// reduce dispatches one value: value hook, classification, class hook,
// default handling. A hook replacement that leaves the class handled
// restarts the dispatch on the replacement.
func (e *encodeState) reduce(v any) (any, error) {
	restarts := 0
	for {
		out, handled, err := e.c.callHook(SlotValue, v, kindOf(v), e.pointer)
		if err != nil {
			return nil, err
		}
		if handled {
			if err = e.restart(&restarts); err != nil {
				return nil, err
			}
			v = out
			continue
		}

		switch Classify(v) {
		case ClassNull:
			return nil, nil
		case ClassPrimitive:
			return e.primitive(v)
		case ClassMapping:
			out, handled, err = e.c.callHook(SlotMapping, v, kindOf(v), e.pointer)
			if err != nil {
				return nil, err
			}
			if !handled {
				return e.mapping(asMapping(v), v)
			}
			if Classify(out) == ClassMapping {
				return e.mapping(asMapping(out), out)
			}
		case ClassBytes:
			out, handled, err = e.c.callHook(SlotBytes, v, kindOf(v), e.pointer)
			if err != nil {
				return nil, err
			}
			viaSequence := false
			if !handled {
				// Unhandled byte sequences continue as sequences.
				out, handled, err = e.c.callHook(SlotSequence, v, kindOf(v), e.pointer)
				if err != nil {
					return nil, err
				}
				if !handled {
					return e.sequence(byteSeq(asBytes(v)), v)
				}
				viaSequence = true
			}
			switch cls := Classify(out); {
			case cls == ClassBytes:
				return e.sequence(byteSeq(asBytes(out)), out)
			case cls == ClassSequence && viaSequence:
				return e.sequence(asSequence(out), out)
			}
		case ClassSequence:
			out, handled, err = e.c.callHook(SlotSequence, v, kindOf(v), e.pointer)
			if err != nil {
				return nil, err
			}
			if !handled {
				return e.sequence(asSequence(v), v)
			}
			if Classify(out) == ClassSequence {
				return e.sequence(asSequence(out), out)
			}
		default:
			out, handled, err = e.c.callHook(SlotDefault, v, kindOf(v), e.pointer)
			if err != nil {
				return nil, err
			}
			if !handled {
				return nil, &UnsupportedTypeError{Type: reflect.TypeOf(v), Path: e.pointer()}
			}
		}

		if err = e.restart(&restarts); err != nil {
			return nil, err
		}
		v = out
	}
}

func (e *encodeState) enter(src any) (visitKey, bool, error) {
	e.depth++
	if limit := e.c.cfg.maxDepth; limit > 0 && e.depth > limit {
		err := &LimitError{Phase: PhaseEncode, Limit: limit, Path: e.pointer(), Err: ErrMaxDepth}
		e.c.emitWarning(MessageDepthExceeded, "limit", limit, "path", err.Path)
		return visitKey{}, false, err
	}
	id, ok := identity(src)
	if !ok {
		return id, false, nil
	}
	if _, seen := e.visiting[id]; seen {
		return id, false, &CycleError{Type: id.typ, Path: e.pointer()}
	}
	e.visiting[id] = struct{}{}

	return id, true, nil
}

func (e *encodeState) leave(id visitKey, tracked bool) {
	e.depth--
	if tracked {
		delete(e.visiting, id)
	}
}

func (e *encodeState) mapping(m Mapping, src any) (any, error) {
	id, tracked, err := e.enter(src)
	defer e.leave(id, tracked)
	if err != nil {
		return nil, err
	}

	obj := NewObject()
	for _, k := range m.Keys() {
		val, _ := m.Lookup(k)
		name, err := e.key(k)
		if err != nil {
			return nil, err
		}
		e.path = append(e.path, escapePointer(name))
		r, err := e.reduce(val)
		e.path = e.path[:len(e.path)-1]
		if err != nil {
			return nil, err
		}
		obj.Set(name, r)
	}

	return obj, nil
}

func (e *encodeState) sequence(s Sequence, src any) (any, error) {
	id, tracked, err := e.enter(src)
	defer e.leave(id, tracked)
	if err != nil {
		return nil, err
	}

	n := s.Len()
	out := make([]any, 0, n)
	for i := range n {
		e.path = append(e.path, strconv.Itoa(i))
		r, err := e.reduce(s.At(i))
		e.path = e.path[:len(e.path)-1]
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}

// key turns a mapping key into its written name: the value hook runs
// first with the usual restart rule, then the key hook, then the built-in
// stringification.
func (e *encodeState) key(k any) (string, error) {
	restarts := 0
	for {
		out, handled, err := e.c.callHook(SlotValue, k, "key", e.pointer)
		if err != nil {
			return "", err
		}
		if !handled {
			break
		}
		if err = e.restart(&restarts); err != nil {
			return "", err
		}
		k = out
	}

	out, handled, err := e.c.callHook(SlotKey, k, "key", e.pointer)
	if err != nil {
		return "", err
	}
	if !handled {
		return e.defaultKey(k)
	}
	if s, ok := out.(string); ok {
		return s, nil
	}
	if e.c.cfg.lenient && Classify(out) == ClassPrimitive {
		if rv := reflect.ValueOf(out); rv.Kind() != reflect.String && rv.Kind() != reflect.Bool {
			return e.defaultKey(out)
		}
	}

	return "", &UnsupportedValueError{
		Value:  fmt.Sprintf("%v", out),
		Path:   e.pointer(),
		Reason: fmt.Sprintf("key hook returned %T, want string", out),
	}
}

// defaultKey is the built-in key stringification.
func (e *encodeState) defaultKey(k any) (string, error) {
	switch t := k.(type) {
	case nil:
		return "null", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case Number:
		return string(t), nil
	case *big.Int:
		return t.String(), nil
	}

	rv := reflect.ValueOf(k)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cast.ToStringE(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cast.ToStringE(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if !e.c.cfg.lenient && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return "", &UnsupportedValueError{Value: FormatFloat(f), Path: e.pointer(), Reason: "non-finite key requires lenient mode"}
		}
		return FormatFloat(f), nil
	}

	return "", &UnsupportedTypeError{Type: reflect.TypeOf(k), Path: e.pointer(), Key: true}
}

// primitive normalizes a directly encodable value.
func (e *encodeState) primitive(v any) (any, error) {
	switch t := v.(type) {
	case string, bool, int64, uint64, *big.Int:
		return t, nil
	case json.Number:
		if !validNumberLiteral(t.String()) {
			return nil, &UnsupportedValueError{Value: strconv.Quote(t.String()), Path: e.pointer(), Reason: "invalid number literal"}
		}
		return t, nil
	case Number:
		if !validNumberLiteral(string(t)) && !(e.c.cfg.lenient && ClassifyNumber(string(t)) == NumberNonFinite) {
			return nil, &UnsupportedValueError{Value: strconv.Quote(string(t)), Path: e.pointer(), Reason: "invalid number literal"}
		}
		return t, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32:
		// Shortest float32 digits, so 0.1 stays 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		return e.float(f)
	case reflect.Float64:
		return e.float(rv.Float())
	}

	return nil, &UnsupportedTypeError{Type: reflect.TypeOf(v), Path: e.pointer()}
}

func (e *encodeState) float(f float64) (any, error) {
	if !e.c.cfg.lenient && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, &UnsupportedValueError{Value: FormatFloat(f), Path: e.pointer(), Reason: "non-finite float requires lenient mode"}
	}

	return f, nil
}
