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
	"strings"
	"testing"
)

var benchDocument = []byte(`{
	"id": 12345,
	"name": "benchmark",
	"ratio": 0.125,
	"tags": ["a", "b", "c", "d"],
	"owner": {"name": "ops", "active": true, "quota": 1e9},
	"items": [{"n": 1}, {"n": 2}, {"n": 3}, {"n": 4}, {"n": 5}]
}`)

// BenchmarkDecode benchmarks decoding with and without hooks installed.
func BenchmarkDecode(b *testing.B) {
	skip := func(any) (any, error) { return nil, ErrSkip }

	benchmarks := []struct {
		name  string
		codec *Codec
	}{
		{name: "NoHooks", codec: MustNew()},
		{name: "SkipHooks", codec: MustNew(WithHooks(Hooks{
			Object: skip, Array: skip, String: skip, Number: skip, Float: skip,
		}))},
		{name: "StringHook", codec: MustNew(WithStringHook(func(v any) (any, error) {
			return strings.ToUpper(v.(string)), nil
		}))},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(benchDocument)))
			for b.Loop() {
				//nolint:errcheck // Benchmark measures performance; error checking would skew results
				_, _ = bm.codec.Decode(benchDocument)
			}
		})
	}
}

// BenchmarkEncode benchmarks encoding a decoded document.
func BenchmarkEncode(b *testing.B) {
	v, err := Decode(benchDocument)
	if err != nil {
		b.Fatal(err)
	}
	skip := func(any) (any, error) { return nil, ErrSkip }

	benchmarks := []struct {
		name  string
		codec *Codec
	}{
		{name: "NoHooks", codec: MustNew()},
		{name: "SkipHooks", codec: MustNew(WithValueHook(skip), WithKeyHook(skip), WithMappingHook(skip))},
		{name: "Indent", codec: MustNew(WithIndent("  "))},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				//nolint:errcheck // Benchmark measures performance; error checking would skew results
				_, _ = bm.codec.Encode(v)
			}
		})
	}
}
