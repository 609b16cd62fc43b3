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

import "log/slog"

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., a decode aborted by a hook).
	EventError EventType = iota
	// EventWarning indicates a warning event (e.g., a restart ceiling was hit).
	EventWarning
	// EventInfo indicates an informational event.
	EventInfo
	// EventDebug indicates a debug event (e.g., a hook skipped or replaced a value).
	EventDebug
)

// Messages of the events the codec emits. Handlers may match on them.
const (
	MessageHookReplaced     = "hook replaced value"
	MessageHookSkipped      = "hook skipped"
	MessageHookFailed       = "hook failed"
	MessageDepthExceeded    = "nesting limit exceeded"
	MessageRestartsExceeded = "hook restart limit exceeded"
	MessageDecodeFailed     = "decode failed"
	MessageEncodeFailed     = "encode failed"
	MessageBindFailed       = "bind failed"
	MessageValidationFailed = "validation failed"
)

// Event represents an internal operational event from the codec.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events from the codec.
//
// Example custom handler:
//
//	jsonhook.WithEventHandler(func(e jsonhook.Event) {
//	    if e.Type == jsonhook.EventError {
//	        errorsSeen.Add(1)
//	    }
//	    slog.Default().Debug(e.Message, e.Args...)
//	})
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to the provided slog.Logger.
// This is the default implementation used by WithLogger.
//
// If logger is nil, returns a no-op handler that discards all events.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {} // no-op
	}

	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

func (c *Codec) emitError(msg string, args ...any) {
	if c.cfg.events != nil {
		c.cfg.events(Event{Type: EventError, Message: msg, Args: args})
	}
}

func (c *Codec) emitWarning(msg string, args ...any) {
	if c.cfg.events != nil {
		c.cfg.events(Event{Type: EventWarning, Message: msg, Args: args})
	}
}

func (c *Codec) emitDebug(msg string, args ...any) {
	if c.cfg.events != nil {
		c.cfg.events(Event{Type: EventDebug, Message: msg, Args: args})
	}
}
