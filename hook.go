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
	"runtime/debug"
)

// callHook runs the hook registered in slot on v.
//
// It returns (replacement, true, nil) when the hook produced a value,
// (v, false, nil) when the slot is unset or the hook skipped, and a
// [*HookError] when the hook failed or panicked. ErrSkip never leaves here.
func (c *Codec) callHook(slot Slot, v any, kind string, path func() string) (any, bool, error) {
	hook := c.registry.Get(slot)
	if hook == nil {
		return v, false, nil
	}

	out, err := invoke(hook, v)
	if err == nil {
		c.emitDebug(MessageHookReplaced, "slot", slot.String(), "kind", kind)
		return out, true, nil
	}
	if errors.Is(err, ErrSkip) {
		c.emitDebug(MessageHookSkipped, "slot", slot.String(), "kind", kind)
		return v, false, nil
	}

	herr := &HookError{
		Phase: slot.Phase(),
		Slot:  slot,
		Kind:  kind,
		Path:  path(),
		Err:   err,
	}
	c.emitWarning(MessageHookFailed, "slot", slot.String(), "kind", kind, "path", herr.Path, "error", err)

	return nil, false, herr
}

// invoke calls hook and converts a panic into an error. A panic value that
// is an error is returned as is.
func invoke(hook Hook, v any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return hook(v)
}
