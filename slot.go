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

// Phase identifies the pipeline a hook belongs to.
type Phase int

const (
	// PhaseDecode is the parse side: wire text to Go values.
	PhaseDecode Phase = iota

	// PhaseEncode is the serialize side: Go values to wire text.
	PhaseEncode
)

// String returns "decode" or "encode".
func (p Phase) String() string {
	if p == PhaseEncode {
		return "encode"
	}

	return "decode"
}

// family returns the sentinel every error of this phase matches.
func (p Phase) family() error {
	if p == PhaseEncode {
		return ErrEncode
	}

	return ErrDecode
}

// Slot identifies one of the fixed hook positions in the decode and encode
// pipelines. Each slot holds at most one [Hook].
type Slot int

const (
	// SlotString receives every decoded string value (object keys excluded).
	SlotString Slot = iota

	// SlotFloat receives the literal text of float-looking numbers.
	SlotFloat

	// SlotNumber receives the literal text of numbers the float hook did not
	// handle, including non-finite tokens in lenient mode.
	SlotNumber

	// SlotArray receives each decoded array after all of its elements.
	SlotArray

	// SlotObject receives each decoded *Object after all of its members.
	SlotObject

	// SlotValue receives every value about to be encoded, keys included.
	SlotValue

	// SlotMapping receives mapping-like values during encode.
	SlotMapping

	// SlotKey receives each mapping key during encode and names it.
	SlotKey

	// SlotSequence receives sequence-like values during encode.
	SlotSequence

	// SlotBytes receives byte sequences during encode.
	SlotBytes

	// SlotDefault receives values the encoder cannot classify.
	SlotDefault

	slotCount
)

var slotNames = [slotCount]string{
	SlotString:   "string",
	SlotFloat:    "float",
	SlotNumber:   "number",
	SlotArray:    "array",
	SlotObject:   "object",
	SlotValue:    "value",
	SlotMapping:  "mapping",
	SlotKey:      "key",
	SlotSequence: "sequence",
	SlotBytes:    "bytes",
	SlotDefault:  "default",
}

// Slots returns every valid slot, decode slots first.
func Slots() []Slot {
	out := make([]Slot, 0, slotCount)
	for s := range slotCount {
		out = append(out, s)
	}

	return out
}

// String returns the slot identifier used by [ParseSlot] and [Registry.SetHook].
func (s Slot) String() string {
	if !s.Valid() {
		return "unknown"
	}

	return slotNames[s]
}

// Valid reports whether s is one of the defined slots.
func (s Slot) Valid() bool {
	return s >= 0 && s < slotCount
}

// Phase reports which pipeline consults the slot.
func (s Slot) Phase() Phase {
	if s >= SlotValue {
		return PhaseEncode
	}

	return PhaseDecode
}

// ParseSlot returns the slot named by name.
// Unknown names fail with a [*ConfigError] wrapping [ErrInvalidSlot].
func ParseSlot(name string) (Slot, error) {
	for s, n := range slotNames {
		if n == name {
			return Slot(s), nil
		}
	}

	return -1, &ConfigError{Field: "slot", Value: name, Err: ErrInvalidSlot}
}
