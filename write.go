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
	"bytes"
	"encoding/json"
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/pretty"
)

const hexDigits = "0123456789abcdef"

// write serializes a reduced tree. Compact output is produced directly;
// indentation and key sorting are applied afterwards with tidwall/pretty.
func (c *Codec) write(v any) ([]byte, error) {
	buf, err := c.appendValue(nil, v)
	if err != nil {
		return nil, err
	}
	if c.cfg.indent == "" && !c.cfg.sortKeys {
		return buf, nil
	}

	opts := &pretty.Options{Width: 80, Indent: c.cfg.indent, SortKeys: c.cfg.sortKeys}
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	out := pretty.PrettyOptions(buf, opts)
	if c.cfg.indent == "" {
		return pretty.Ugly(out), nil
	}

	return bytes.TrimRight(out, "\n"), nil
}

func (c *Codec) appendValue(buf []byte, v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		return strconv.AppendBool(buf, t), nil
	case string:
		return c.appendString(buf, t), nil
	case int64:
		return strconv.AppendInt(buf, t, 10), nil
	case uint64:
		return strconv.AppendUint(buf, t, 10), nil
	case float64:
		return append(buf, FormatFloat(t)...), nil
	case *big.Int:
		return t.Append(buf, 10), nil
	case json.Number:
		return append(buf, t...), nil
	case Number:
		return append(buf, t...), nil
	case []any:
		buf = append(buf, '[')
		for i, e := range t {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			if buf, err = c.appendValue(buf, e); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case *Object:
		buf = append(buf, '{')
		i := 0
		for k, e := range t.All() {
			if i > 0 {
				buf = append(buf, ',')
			}
			i++
			buf = c.appendString(buf, k)
			buf = append(buf, ':')
			var err error
			if buf, err = c.appendValue(buf, e); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}
}

func (c *Codec) appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			switch {
			case b == '"' || b == '\\':
				buf = append(buf, '\\', b)
			case b == '\n':
				buf = append(buf, '\\', 'n')
			case b == '\r':
				buf = append(buf, '\\', 'r')
			case b == '\t':
				buf = append(buf, '\\', 't')
			case b == '\b':
				buf = append(buf, '\\', 'b')
			case b == '\f':
				buf = append(buf, '\\', 'f')
			case b < 0x20:
				buf = appendEscapedRune(buf, rune(b))
			default:
				buf = append(buf, b)
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			buf = append(buf, `\ufffd`...)
		case c.cfg.escapeNonASCII:
			if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
				buf = appendEscapedRune(buf, r1)
				buf = appendEscapedRune(buf, r2)
			} else {
				buf = appendEscapedRune(buf, r)
			}
		default:
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}

	return append(buf, '"')
}

func appendEscapedRune(buf []byte, r rune) []byte {
	return append(buf, '\\', 'u',
		hexDigits[r>>12&0xf], hexDigits[r>>8&0xf], hexDigits[r>>4&0xf], hexDigits[r&0xf])
}
