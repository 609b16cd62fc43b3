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

//go:build !integration

package jsonhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c, err := New()
	require.NoError(t, err)
	assert.False(t, c.Lenient())
	assert.Empty(t, c.Indent())
	assert.Equal(t, DefaultMaxDepth, c.cfg.maxDepth)
	assert.Equal(t, DefaultMaxRestarts, c.cfg.maxRestarts)
	assert.Equal(t, int64(DefaultMaxInputSize), c.cfg.maxInputSize)
	assert.Equal(t, "json", c.cfg.tagName)
	assert.Equal(t, Hooks{}, c.Registry().Hooks())
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  []Option
		field string
	}{
		{name: "input size", opts: []Option{WithMaxInputSize(0)}, field: "max input size"},
		{name: "tag name", opts: []Option{WithTagName("")}, field: "tag name"},
		{name: "schema json", opts: []Option{WithSchema([]byte(`{`))}, field: "schema"},
		{name: "schema keyword", opts: []Option{WithSchema([]byte(`{"type": 12}`))}, field: "schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.opts...)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { MustNew(WithLenient()) })
	assert.PanicsWithValue(t,
		`jsonhook.MustNew: jsonhook: invalid tag name: invalid option`,
		func() { MustNew(WithTagName("")) })
}

func TestWithHooks(t *testing.T) {
	t.Parallel()

	c := MustNew(
		WithHooks(Hooks{String: identityHook, Value: identityHook}),
		WithStringHook(nil),
		WithDefaultHook(identityHook),
	)
	h := c.Registry().Hooks()
	assert.Nil(t, h.String, "later options win")
	assert.NotNil(t, h.Value)
	assert.NotNil(t, h.Default)
}

func TestCodec_Events(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		events []Event
	)
	c := MustNew(
		WithEventHandler(func(e Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}),
		WithStringHook(func(v any) (any, error) {
			if v == "bad" {
				return nil, errors.New("rejected")
			}
			return nil, ErrSkip
		}),
	)

	_, err := c.DecodeString(`["ok","bad"]`)
	require.Error(t, err)

	var messages []string
	for _, e := range events {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{MessageHookSkipped, MessageHookFailed, MessageDecodeFailed}, messages)
	assert.Equal(t, EventDebug, events[0].Type)
	assert.Equal(t, EventWarning, events[1].Type)
	assert.Equal(t, EventError, events[2].Type)
	assert.Contains(t, events[1].Args, "/1")
}

func TestCodec_EventMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		run  func(c *Codec) error
		want []string
	}{
		{
			name: "restart limit",
			opts: []Option{WithMaxRestarts(1), WithValueHook(func(v any) (any, error) {
				return v.(string) + "!", nil
			})},
			run: func(c *Codec) error {
				_, err := c.Encode("x")
				return err
			},
			want: []string{MessageHookReplaced, MessageHookReplaced, MessageRestartsExceeded, MessageEncodeFailed},
		},
		{
			name: "decode depth",
			opts: []Option{WithMaxDepth(1)},
			run: func(c *Codec) error {
				_, err := c.DecodeString(`[[1]]`)
				return err
			},
			want: []string{MessageDepthExceeded, MessageDecodeFailed},
		},
		{
			name: "encode depth",
			opts: []Option{WithMaxDepth(1)},
			run: func(c *Codec) error {
				_, err := c.Encode([]any{[]any{1}})
				return err
			},
			want: []string{MessageDepthExceeded, MessageEncodeFailed},
		},
		{
			name: "bind",
			run: func(c *Codec) error {
				var out struct {
					Port int `json:"port"`
				}
				return c.DecodeTo([]byte(`{"port":"many"}`), &out)
			},
			want: []string{MessageBindFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var messages []string
			opts := append([]Option{WithEventHandler(func(e Event) {
				messages = append(messages, e.Message)
			})}, tt.opts...)
			c := TestCodec(t, opts...)

			require.Error(t, tt.run(c))
			assert.Equal(t, tt.want, messages)
		})
	}
}

func TestCodec_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := EncodeString([]any{1}, WithLogger(logger), WithMaxRestarts(2), WithValueHook(func(v any) (any, error) {
		return []any{v}, nil
	}))
	require.ErrorIs(t, err, ErrMaxRestarts)

	var levels []string
	for line := range strings.Lines(buf.String()) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		levels = append(levels, rec["level"].(string)+" "+rec["msg"].(string))
	}
	assert.Contains(t, levels, "DEBUG hook replaced value")
	assert.Contains(t, levels, "WARN hook restart limit exceeded")
	assert.Equal(t, "ERROR encode failed", levels[len(levels)-1])
}

func TestDefaultEventHandler_NilLogger(t *testing.T) {
	t.Parallel()

	handler := DefaultEventHandler(nil)
	assert.NotPanics(t, func() {
		handler(Event{Type: EventError, Message: "ignored"})
	})
}

func TestHookError_Message(t *testing.T) {
	t.Parallel()

	err := &HookError{Phase: PhaseDecode, Slot: SlotArray, Kind: "array", Path: "/x", Err: errors.New("boom")}
	assert.Equal(t, `jsonhook: decode hook "array" failed on array at /x: boom`, err.Error())

	err.Path = ""
	assert.Equal(t, `jsonhook: decode hook "array" failed on array: boom`, err.Error())
}

func TestPhaseSentinels(t *testing.T) {
	t.Parallel()

	decodeErrs := []error{
		&SyntaxError{Offset: 1, Msg: "x"},
		&SchemaError{Err: errors.New("x")},
		&BindError{Reason: "decode", Err: errors.New("x")},
		&LimitError{Phase: PhaseDecode, Err: ErrMaxDepth},
		&HookError{Phase: PhaseDecode, Err: errors.New("x")},
	}
	for _, err := range decodeErrs {
		assert.ErrorIs(t, err, ErrDecode, "%T", err)
		assert.NotErrorIs(t, err, ErrEncode, "%T", err)
	}

	encodeErrs := []error{
		&UnsupportedTypeError{},
		&UnsupportedValueError{},
		&CycleError{},
		&LimitError{Phase: PhaseEncode, Err: ErrMaxRestarts},
		&HookError{Phase: PhaseEncode, Err: errors.New("x")},
		&WriteError{Format: "YAML", Err: errors.New("x")},
	}
	for _, err := range encodeErrs {
		assert.ErrorIs(t, err, ErrEncode, "%T", err)
		assert.NotErrorIs(t, err, ErrDecode, "%T", err)
	}

	_, err := Decode([]byte(`1`), WithTagName(""))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrEncode)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := &WriteError{Format: "TOML", Err: cause}
	assert.Equal(t, "jsonhook: failed to write TOML: disk full", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
}
