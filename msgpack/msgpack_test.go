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

package msgpack

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"rivaas.dev/jsonhook"
)

// ordered writes a map with keys in the given order.
func ordered(t *testing.T, kv ...any) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(len(kv)/2))
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, enc.Encode(kv[i]))
		require.NoError(t, enc.Encode(kv[i+1]))
	}

	return buf.Bytes()
}

func TestDecode_Values(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data := ordered(t,
		"name", "svc",
		"port", 8080,
		"neg", int8(-3),
		"big", uint64(math.MaxUint64),
		"ratio", 0.25,
		"half", float32(0.5),
		"ok", true,
		"none", nil,
		"raw", []byte{1, 2},
		"at", ts,
		"list", []any{1, "x"},
	)

	v, err := Decode(data)
	require.NoError(t, err)

	obj := v.(*jsonhook.Object)
	assert.Equal(t, []string{"name", "port", "neg", "big", "ratio", "half", "ok", "none", "raw", "at", "list"}, obj.Fields())
	assert.Equal(t, map[string]any{
		"name":  "svc",
		"port":  int64(8080),
		"neg":   int64(-3),
		"big":   jsonhook.Plain(mustBig(t, "18446744073709551615")),
		"ratio": 0.25,
		"half":  0.5,
		"ok":    true,
		"none":  nil,
		"raw":   "AQI=",
		"at":    "2024-05-01T10:00:00Z",
		"list":  []any{int64(1), "x"},
	}, jsonhook.Plain(obj))
}

func TestDecode_NonStringKeys(t *testing.T) {
	t.Parallel()

	data := ordered(t, 1, "a", true, "b", 2.5, "c")
	v, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "true", "2.5"}, v.(*jsonhook.Object).Fields())
}

func TestDecode_Hooks(t *testing.T) {
	t.Parallel()

	var floats, numbers []any
	data, err := msgpack.Marshal([]any{1, 2.5})
	require.NoError(t, err)

	_, err = Decode(data, WithCodecOptions(
		jsonhook.WithFloatHook(func(v any) (any, error) {
			floats = append(floats, v)
			return nil, jsonhook.ErrSkip
		}),
		jsonhook.WithNumberHook(func(v any) (any, error) {
			numbers = append(numbers, v)
			return nil, jsonhook.ErrSkip
		}),
	))
	require.NoError(t, err)
	assert.Equal(t, []any{"2.5"}, floats)
	assert.Equal(t, []any{"1", "2.5"}, numbers)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	valid, err := msgpack.Marshal([]any{1, 2})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "truncated", data: valid[:len(valid)-1]},
		{name: "trailing", data: append(bytes.Clone(valid), 0xc0)},
		{name: "reserved code", data: []byte{0xc1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(tt.data)
			var syntaxErr *jsonhook.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.ErrorIs(t, err, jsonhook.ErrDecode)
		})
	}

	v, err := Decode(append(bytes.Clone(valid), 0xc0), WithAllowTrailing())
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, v)
}

func TestDecodeReader(t *testing.T) {
	t.Parallel()

	data, err := msgpack.Marshal([]any{1, "two"})
	require.NoError(t, err)

	v, err := DecodeReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "two"}, v)

	_, err = DecodeReader(bytes.NewReader(data), WithCodecOptions(jsonhook.WithMaxInputSize(int64(len(data)-1))))
	require.ErrorIs(t, err, jsonhook.ErrMaxInputSize)

	_, err = DecodeReader(bytes.NewReader(append(bytes.Clone(data), 0xc0)),
		WithCodecOptions(jsonhook.WithMaxInputSize(int64(len(data)+1))), WithAllowTrailing())
	require.NoError(t, err, "format options survive the shared codec")
}

func TestEncode(t *testing.T) {
	t.Parallel()

	v := jsonhook.ObjectOf(
		"b", 1,
		"a", []any{"x", nil, true},
		"f", 1.5,
		"n", jsonhook.Number("-7"),
	)

	out, err := Encode(v)
	require.NoError(t, err)

	dec := msgpack.NewDecoder(bytes.NewReader(out))
	n, err := dec.DecodeMapLen()
	require.NoError(t, err)
	require.Equal(t, 4, n)

	var keys []string
	got := map[string]any{}
	for range n {
		k, err := dec.DecodeString()
		require.NoError(t, err)
		val, err := dec.DecodeInterface()
		require.NoError(t, err)
		keys = append(keys, k)
		got[k] = val
	}
	assert.Equal(t, []string{"b", "a", "f", "n"}, keys)
	assert.Equal(t, map[string]any{
		"b": int8(1),
		"a": []any{"x", nil, true},
		"f": 1.5,
		"n": int8(-7),
	}, got)
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	v := map[string]any{"list": []any{1, "two", 3.5}, "nested": map[string]any{"ok": false}}
	out, err := Encode(v, WithCompactFloats())
	require.NoError(t, err)

	back, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"list":   []any{int64(1), "two", 3.5},
		"nested": map[string]any{"ok": false},
	}, jsonhook.Plain(back))
}

func TestEncode_Hooks(t *testing.T) {
	t.Parallel()

	out, err := Encode(map[string]any{"k": "v"}, WithCodecOptions(
		jsonhook.WithValueHook(func(v any) (any, error) {
			if s, ok := v.(string); ok && s == "v" {
				return strings.Repeat(s, 3), nil
			}
			return nil, jsonhook.ErrSkip
		}),
	))
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, msgpack.Unmarshal(out, &got))
	assert.Equal(t, map[string]string{"k": "vvv"}, got)
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Encode(make(chan int))
	var typeErr *jsonhook.UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)

	_, err = Encode(jsonhook.Number("123456789012345678901234567890"))
	var valueErr *jsonhook.UnsupportedValueError
	require.ErrorAs(t, err, &valueErr)
}

func mustBig(t *testing.T, s string) any {
	t.Helper()

	v, err := jsonhook.DecodeString(s)
	require.NoError(t, err)
	return v
}
