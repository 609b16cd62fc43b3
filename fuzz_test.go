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
	"testing"
)

// FuzzDecode feeds arbitrary input through both decoding modes
func FuzzDecode(f *testing.F) {
	f.Add(`{"a":[1,2.5,"x",null,true]}`)
	f.Add(`[`)
	f.Add(`{"a":1,}`)
	f.Add(`[NaN, -Infinity, 1e400]`)
	f.Add(`"😀"`)
	f.Add(`"\ud83d"`)
	f.Add(`/* c */ [1] // x`)
	f.Add(`123456789012345678901234567890`)
	f.Add(`-0.0e-0`)
	f.Add(``)

	strict := MustNew()
	lenient := MustNew(WithLenient())
	f.Fuzz(func(t *testing.T, input string) {
		// Should never panic, even with invalid input
		//nolint:errcheck // Fuzz test intentionally ignores errors; testing panic-safety only
		_, _ = strict.DecodeString(input)
		v, err := lenient.DecodeString(input)
		if err != nil {
			return
		}
		//nolint:errcheck // Fuzz test intentionally ignores errors; testing panic-safety only
		_, _ = lenient.Encode(v)
	})
}

// FuzzEncodeString tests string escaping with fuzz input
func FuzzEncodeString(f *testing.F) {
	f.Add("plain")
	f.Add("quote\" and \\ backslash")
	f.Add("\x00\x1f\x7f")
	f.Add("é😀")
	f.Add("\xff\xfe")
	f.Add("  ")

	escaped := MustNew(WithEscapeNonASCII())
	f.Fuzz(func(t *testing.T, input string) {
		out, err := Encode(input)
		if err != nil {
			t.Fatalf("encode %q: %v", input, err)
		}
		if _, err = DecodeString(string(out)); err != nil {
			t.Fatalf("decode %s: %v", out, err)
		}
		out, err = escaped.Encode(input)
		if err != nil {
			t.Fatalf("encode escaped %q: %v", input, err)
		}
		for _, b := range out {
			if b >= 0x80 {
				t.Fatalf("non-ASCII byte in %s", out)
			}
		}
	})
}
