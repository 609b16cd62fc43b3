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

	"dario.cat/mergo"
)

// Hook transforms a value at one point of the decode or encode pipeline.
//
// A hook returns either a replacement value or [ErrSkip] (possibly wrapped)
// to decline this one invocation, in which case the pipeline proceeds as if no
// hook were registered. Any other error aborts the whole call and is surfaced
// as a [*HookError].
//
// Hooks receive values by alias. A hook that mutates a container and then
// skips leaves the mutation visible to the default handling that follows.
type Hook func(v any) (any, error)

// Hooks is a set of hooks keyed by field instead of [Slot]. Nil fields are
// unset. It is the argument form accepted by [WithHooks] and [Registry.Apply].
type Hooks struct {
	String   Hook
	Float    Hook
	Number   Hook
	Array    Hook
	Object   Hook
	Value    Hook
	Mapping  Hook
	Key      Hook
	Sequence Hook
	Bytes    Hook
	Default  Hook
}

// get returns the hook stored for slot.
func (h *Hooks) get(slot Slot) Hook {
	switch slot {
	case SlotString:
		return h.String
	case SlotFloat:
		return h.Float
	case SlotNumber:
		return h.Number
	case SlotArray:
		return h.Array
	case SlotObject:
		return h.Object
	case SlotValue:
		return h.Value
	case SlotMapping:
		return h.Mapping
	case SlotKey:
		return h.Key
	case SlotSequence:
		return h.Sequence
	case SlotBytes:
		return h.Bytes
	case SlotDefault:
		return h.Default
	default:
		return nil
	}
}

// set stores hook for slot and reports whether slot was valid.
func (h *Hooks) set(slot Slot, hook Hook) bool {
	switch slot {
	case SlotString:
		h.String = hook
	case SlotFloat:
		h.Float = hook
	case SlotNumber:
		h.Number = hook
	case SlotArray:
		h.Array = hook
	case SlotObject:
		h.Object = hook
	case SlotValue:
		h.Value = hook
	case SlotMapping:
		h.Mapping = hook
	case SlotKey:
		h.Key = hook
	case SlotSequence:
		h.Sequence = hook
	case SlotBytes:
		h.Bytes = hook
	case SlotDefault:
		h.Default = hook
	default:
		return false
	}

	return true
}

// Registry holds the active hook for every [Slot].
//
// A Registry is plain mutable state with no locking. It must not be mutated
// while a decode or encode that reads it is in flight; sessions that run
// concurrently should each own a [Codec] and therefore a Registry.
type Registry struct {
	hooks Hooks
}

// NewRegistry returns a registry with every slot unset.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set stores hook in slot, replacing any previous hook.
// A nil hook clears the slot.
func (r *Registry) Set(slot Slot, hook Hook) error {
	if !r.hooks.set(slot, hook) {
		return &ConfigError{Field: "slot", Value: fmt.Sprint(int(slot)), Err: ErrInvalidSlot}
	}

	return nil
}

// Get returns the hook stored in slot, or nil when the slot is unset or invalid.
func (r *Registry) Get(slot Slot) Hook {
	return r.hooks.get(slot)
}

// Clear unsets slot. It is equivalent to Set(slot, nil).
func (r *Registry) Clear(slot Slot) error {
	return r.Set(slot, nil)
}

// ClearAll unsets every slot.
func (r *Registry) ClearAll() {
	r.hooks = Hooks{}
}

// SetHook is [Registry.Set] addressed by slot identifier (see [Slot.String]).
func (r *Registry) SetHook(name string, hook Hook) error {
	slot, err := ParseSlot(name)
	if err != nil {
		return err
	}

	return r.Set(slot, hook)
}

// ClearHook is [Registry.Clear] addressed by slot identifier.
func (r *Registry) ClearHook(name string) error {
	return r.SetHook(name, nil)
}

// Apply stores every non-nil hook of h, leaving the other slots untouched.
func (r *Registry) Apply(h Hooks) error {
	merged := r.hooks
	if err := mergo.Merge(&merged, h, mergo.WithOverride); err != nil {
		return &ConfigError{Field: "hooks", Err: err}
	}
	r.hooks = merged

	return nil
}

// Hooks returns a snapshot of the registry contents.
func (r *Registry) Hooks() Hooks {
	return r.hooks
}

// Clone returns an independent registry holding the same hooks.
func (r *Registry) Clone() *Registry {
	return &Registry{hooks: r.hooks}
}
