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

package yaml

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"rivaas.dev/jsonhook"
)

func TestDecode_Values(t *testing.T) {
	t.Parallel()

	body := []byte(`
name: app
port: 8080
ratio: 0.75
debug: true
owner: ~
hex: 0x1F
tags: [a, b]
`)

	v, err := Decode(body)
	require.NoError(t, err)

	obj, ok := v.(*jsonhook.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "port", "ratio", "debug", "owner", "hex", "tags"}, obj.Fields())
	assert.Equal(t, map[string]any{
		"name":  "app",
		"port":  int64(8080),
		"ratio": 0.75,
		"debug": true,
		"owner": nil,
		"hex":   int64(31),
		"tags":  []any{"a", "b"},
	}, jsonhook.Plain(obj))
}

func TestDecode_NumberKinds(t *testing.T) {
	t.Parallel()

	var floats, numbers []any
	_, err := Decode([]byte(`[1, 2.5, 1e3, .inf, "3", 1.5e+2x]`), WithCodecOptions(
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
	assert.Equal(t, []any{"2.5", "1e3"}, floats)
	assert.Equal(t, []any{"1", "2.5", "1e3", "Infinity"}, numbers)
}

func TestDecode_NonFinite(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte(`[.nan, -.inf]`))
	require.NoError(t, err)
	arr := v.([]any)
	assert.True(t, math.IsNaN(arr[0].(float64)))
	assert.True(t, math.IsInf(arr[1].(float64), -1))
}

func TestDecode_BottomUp(t *testing.T) {
	t.Parallel()

	var order []string
	_, err := Decode([]byte("outer:\n  inner: [x]\n"), WithCodecOptions(
		jsonhook.WithArrayHook(func(any) (any, error) {
			order = append(order, "array")
			return nil, jsonhook.ErrSkip
		}),
		jsonhook.WithObjectHook(func(v any) (any, error) {
			order = append(order, "object:"+strings.Join(v.(*jsonhook.Object).Fields(), ","))
			return nil, jsonhook.ErrSkip
		}),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"array", "object:inner", "object:outer"}, order)
}

func TestDecode_Aliases(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte("base: &b {x: 1}\ncopy: *b\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"base": map[string]any{"x": int64(1)},
		"copy": map[string]any{"x": int64(1)},
	}, jsonhook.Plain(v))
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ``},
		{name: "malformed", body: "a: [1,\n"},
		{name: "complex key", body: "? [a, b]\n: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(tt.body))
			var syntaxErr *jsonhook.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.ErrorIs(t, err, jsonhook.ErrDecode)
		})
	}
}

func TestDecode_HookError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	codec := jsonhook.TestCodec(t, jsonhook.WithStringHook(func(any) (any, error) {
		return nil, boom
	}))

	_, err := Decode([]byte("list:\n  - 1\n  - x\n"), WithCodec(codec))
	var hookErr *jsonhook.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Same(t, boom, hookErr.Err)
	assert.Equal(t, "/list/1", hookErr.Path)
}

func TestDecodeReader(t *testing.T) {
	t.Parallel()

	v, err := DecodeReader(strings.NewReader("- 1\n- two\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "two"}, v)

	_, err = DecodeReader(strings.NewReader("- 1\n- two\n"), WithCodecOptions(jsonhook.WithMaxInputSize(4)))
	require.ErrorIs(t, err, jsonhook.ErrMaxInputSize)

	v, err = DecodeReader(strings.NewReader("- 1\n"), WithCodecOptions(jsonhook.WithMaxInputSize(4)))
	require.NoError(t, err, "input at the limit is accepted")
	assert.Equal(t, []any{int64(1)}, v)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	v := jsonhook.ObjectOf(
		"name", "app",
		"outer", jsonhook.ObjectOf("inner", true),
		"port", 8080,
		"ratio", 1.0,
		"none", nil,
	)

	out, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "name: app\nouter:\n  inner: true\nport: 8080\nratio: 1.0\nnone: null\n", string(out))
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	v := jsonhook.ObjectOf(
		"looks_like_int", "123",
		"looks_like_bool", "true",
		"list", []any{int64(1), "x", nil},
		"inf", math.Inf(1),
	)

	out, err := Encode(v, WithCodecOptions(jsonhook.WithLenient()))
	require.NoError(t, err)

	back, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, jsonhook.Plain(v), jsonhook.Plain(back))
}

func TestEncode_BigIntegerRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte("id: 123456789012345678901234567890\n"))
	require.NoError(t, err)

	out, err := Encode(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), "123456789012345678901234567890")

	back, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, jsonhook.Plain(v), jsonhook.Plain(back))
}

func TestEncode_Hooks(t *testing.T) {
	t.Parallel()

	out, err := Encode(map[string]any{"b": 1, "a": 2}, WithIndent(4), WithCodecOptions(
		jsonhook.WithKeyHook(func(k any) (any, error) {
			return strings.ToUpper(k.(string)), nil
		}),
	))
	require.NoError(t, err)
	assert.Equal(t, "A: 2\nB: 1\n", string(out))
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Encode(struct{}{})
	var typeErr *jsonhook.UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)

	_, err = Encode(1, WithCodecOptions(jsonhook.WithMaxInputSize(-1)))
	var cfgErr *jsonhook.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.NotErrorIs(t, err, jsonhook.ErrEncode)
}

func TestWriteNode_Error(t *testing.T) {
	t.Parallel()

	_, err := writeNode(&yaml.Node{Kind: yaml.Kind(99)}, DefaultIndent)
	var writeErr *jsonhook.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "YAML", writeErr.Format)
	assert.ErrorIs(t, err, jsonhook.ErrEncode)
}
