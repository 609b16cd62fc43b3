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
	"strconv"
	"strings"
)

// Assembler builds a value tree from grammar events and runs the decode
// hooks as each value is finished.
//
// A grammar layer (the built-in JSON scanner, or the yaml, toml and msgpack
// sub-packages) calls the event methods in document order. Scalars are
// hooked as soon as they are reported; arrays and objects are hooked when
// they end, after every member has already been hooked. A finished value is
// then attached to its parent, or becomes the result when it has none.
//
// The first error stops the assembler; every later call returns it again.
// An Assembler is single-use and not safe for concurrent use.
type Assembler struct {
	c      *Codec
	stack  []frame
	result any
	done   bool
	err    error
}

// frame is an open container.
type frame struct {
	array  []any
	object *Object
	key    string
	hasKey bool
}

// NewAssembler returns an Assembler that uses the codec's decode hooks and
// depth limit.
func (c *Codec) NewAssembler() *Assembler {
	return &Assembler{c: c}
}

func (a *Assembler) fail(err error) error {
	a.err = err
	return err
}

// expectValue checks that a value may be reported now.
func (a *Assembler) expectValue() error {
	if a.err != nil {
		return a.err
	}
	if len(a.stack) == 0 {
		if a.done {
			return a.fail(decodeErrorf(ErrMultipleDocuments, "more than one top-level value"))
		}
		return nil
	}
	if top := &a.stack[len(a.stack)-1]; top.object != nil && !top.hasKey {
		return a.fail(decodeErrorf(ErrUnexpectedEvent, "object member without a key"))
	}

	return nil
}

// attach places a finished value into the open container or makes it the
// result.
func (a *Assembler) attach(v any) error {
	if len(a.stack) == 0 {
		a.result = v
		a.done = true
		return nil
	}
	top := &a.stack[len(a.stack)-1]
	if top.object != nil {
		top.object.Set(top.key, v)
		top.key, top.hasKey = "", false
		return nil
	}
	top.array = append(top.array, v)

	return nil
}

// path returns the JSON pointer of the value about to be attached.
func (a *Assembler) path() string {
	var b strings.Builder
	for i := range a.stack {
		f := &a.stack[i]
		b.WriteByte('/')
		if f.object != nil {
			b.WriteString(escapePointer(f.key))
		} else {
			b.WriteString(strconv.Itoa(len(f.array)))
		}
	}

	return b.String()
}

func (a *Assembler) push(f frame) error {
	if err := a.expectValue(); err != nil {
		return err
	}
	if limit := a.c.cfg.maxDepth; limit > 0 && len(a.stack) >= limit {
		err := &LimitError{Phase: PhaseDecode, Limit: limit, Path: a.path(), Err: ErrMaxDepth}
		a.c.emitWarning(MessageDepthExceeded, "limit", limit, "path", err.Path)
		return a.fail(err)
	}
	a.stack = append(a.stack, f)

	return nil
}

func (a *Assembler) pop(wantObject bool) (frame, error) {
	if a.err != nil {
		return frame{}, a.err
	}
	if len(a.stack) == 0 {
		return frame{}, a.fail(decodeErrorf(ErrUnexpectedEvent, "container end without a matching begin"))
	}
	top := a.stack[len(a.stack)-1]
	if (top.object != nil) != wantObject || top.hasKey {
		return frame{}, a.fail(decodeErrorf(ErrUnexpectedEvent, "mismatched container end"))
	}
	a.stack = a.stack[:len(a.stack)-1]

	return top, nil
}

// finish runs the hook for slot on v and attaches the outcome.
func (a *Assembler) finish(slot Slot, v any, kind string) error {
	out, _, err := a.c.callHook(slot, v, kind, a.path)
	if err != nil {
		return a.fail(err)
	}

	return a.attach(out)
}

// BeginArray opens an array.
func (a *Assembler) BeginArray() error {
	return a.push(frame{array: []any{}})
}

// EndArray closes the innermost array and passes it to the array hook.
func (a *Assembler) EndArray() error {
	f, err := a.pop(false)
	if err != nil {
		return err
	}

	return a.finish(SlotArray, f.array, "array")
}

// BeginObject opens an object.
func (a *Assembler) BeginObject() error {
	return a.push(frame{object: NewObject()})
}

// Key names the next member of the innermost object. Keys are not hooked.
func (a *Assembler) Key(key string) error {
	if a.err != nil {
		return a.err
	}
	if len(a.stack) == 0 {
		return a.fail(decodeErrorf(ErrUnexpectedEvent, "key outside an object"))
	}
	top := &a.stack[len(a.stack)-1]
	if top.object == nil || top.hasKey {
		return a.fail(decodeErrorf(ErrUnexpectedEvent, "unexpected key %q", key))
	}
	top.key, top.hasKey = key, true

	return nil
}

// EndObject closes the innermost object and passes it to the object hook.
func (a *Assembler) EndObject() error {
	f, err := a.pop(true)
	if err != nil {
		return err
	}

	return a.finish(SlotObject, f.object, "object")
}

// String reports a string value and passes it to the string hook.
func (a *Assembler) String(s string) error {
	if err := a.expectValue(); err != nil {
		return err
	}

	return a.finish(SlotString, s, "string")
}

// Number reports a number literal.
//
// Float-looking literals go to the float hook first; when it is unset or
// skips, the number hook is consulted, and when that is unset or skips too
// the literal is converted to int64, *big.Int or float64.
func (a *Assembler) Number(text string, kind NumberKind) error {
	if err := a.expectValue(); err != nil {
		return err
	}

	if kind == NumberFloat {
		v, handled, err := a.c.callHook(SlotFloat, text, "float", a.path)
		if err != nil {
			return a.fail(err)
		}
		if handled {
			return a.attach(v)
		}
	}

	v, handled, err := a.c.callHook(SlotNumber, text, "number", a.path)
	if err != nil {
		return a.fail(err)
	}
	if !handled {
		if v, err = parseNumber(text, kind); err != nil {
			return a.fail(err)
		}
	}

	return a.attach(v)
}

// Bool reports a boolean value.
func (a *Assembler) Bool(b bool) error {
	if err := a.expectValue(); err != nil {
		return err
	}

	return a.attach(b)
}

// Null reports a null value.
func (a *Assembler) Null() error {
	if err := a.expectValue(); err != nil {
		return err
	}

	return a.attach(nil)
}

// Result returns the assembled top-level value.
func (a *Assembler) Result() (any, error) {
	if a.err != nil {
		return nil, a.err
	}
	if len(a.stack) > 0 || !a.done {
		return nil, decodeErrorf(ErrIncompleteInput, "document ended before the top-level value was complete")
	}

	return a.result, nil
}

// escapePointer escapes one JSON pointer reference token.
func escapePointer(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")

	return strings.ReplaceAll(s, "/", "~1")
}
