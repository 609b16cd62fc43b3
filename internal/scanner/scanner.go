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

// Package scanner implements the JSON grammar as an event stream.
//
// Parse walks the input once and reports every finished value to a [Handler]
// in completion order: scalars as they end, containers with a Begin/End pair
// around their members. Number literals are reported as their exact text
// together with their lexical [Kind]; no conversion happens here.
package scanner

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Kind is the lexical sub-kind of a number literal.
type Kind int

const (
	Integer   Kind = iota // no fraction or exponent
	Float                 // fraction or exponent present
	NonFinite             // NaN, Infinity, +Infinity, -Infinity (lenient only)
)

// Handler receives grammar events. A non-nil error stops the parse and is
// returned from [Parse] unchanged.
type Handler interface {
	BeginArray() error
	EndArray() error
	BeginObject() error
	Key(key string) error
	EndObject() error
	String(s string) error
	Number(text string, kind Kind) error
	Bool(b bool) error
	Null() error
}

// Options configures the grammar.
type Options struct {
	// Lenient accepts comments, trailing commas, non-finite number tokens
	// and raw control characters inside strings.
	Lenient bool
}

// Error is a syntax error at a byte offset.
type Error struct {
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

type scanner struct {
	data    []byte
	pos     int
	h       Handler
	lenient bool
}

// Parse reads exactly one JSON value from data and reports it to h.
func Parse(data []byte, h Handler, opts Options) error {
	s := &scanner{data: data, h: h, lenient: opts.Lenient}
	if err := s.skipSpace(); err != nil {
		return err
	}
	if s.pos >= len(s.data) {
		return s.errorf("unexpected end of input")
	}
	if err := s.value(); err != nil {
		return err
	}
	if err := s.skipSpace(); err != nil {
		return err
	}
	if s.pos < len(s.data) {
		return s.errorf("invalid character %q after top-level value", s.data[s.pos])
	}

	return nil
}

func (s *scanner) errorf(format string, args ...any) error {
	return &Error{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) skipSpace() error {
	for s.pos < len(s.data) {
		switch c := s.data[s.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.lenient && s.pos+1 < len(s.data):
			switch s.data[s.pos+1] {
			case '/':
				end := bytes.IndexByte(s.data[s.pos:], '\n')
				if end < 0 {
					s.pos = len(s.data)
				} else {
					s.pos += end + 1
				}
			case '*':
				end := bytes.Index(s.data[s.pos+2:], []byte("*/"))
				if end < 0 {
					return s.errorf("unterminated comment")
				}
				s.pos += end + 4
			default:
				return nil
			}
		default:
			return nil
		}
	}

	return nil
}

func (s *scanner) value() error {
	if s.pos >= len(s.data) {
		return s.errorf("unexpected end of input")
	}
	switch c := s.data[s.pos]; {
	case c == '{':
		return s.object()
	case c == '[':
		return s.array()
	case c == '"':
		str, err := s.str()
		if err != nil {
			return err
		}
		return s.h.String(str)
	case c == 't':
		if err := s.literal("true"); err != nil {
			return err
		}
		return s.h.Bool(true)
	case c == 'f':
		if err := s.literal("false"); err != nil {
			return err
		}
		return s.h.Bool(false)
	case c == 'n':
		if err := s.literal("null"); err != nil {
			return err
		}
		return s.h.Null()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	case s.lenient && (c == 'N' || c == 'I' || c == '+'):
		return s.nonFinite()
	default:
		return s.errorf("invalid character %q looking for beginning of value", c)
	}
}

func (s *scanner) literal(word string) error {
	if !bytes.HasPrefix(s.data[s.pos:], []byte(word)) {
		return s.errorf("invalid literal, expected %q", word)
	}
	s.pos += len(word)

	return nil
}

func (s *scanner) nonFinite() error {
	for _, word := range []string{"NaN", "Infinity", "+Infinity", "-Infinity"} {
		if bytes.HasPrefix(s.data[s.pos:], []byte(word)) {
			s.pos += len(word)
			return s.h.Number(word, NonFinite)
		}
	}

	return s.errorf("invalid character %q looking for beginning of value", s.data[s.pos])
}

func (s *scanner) number() error {
	start := s.pos
	if s.data[s.pos] == '-' {
		s.pos++
		if s.lenient && bytes.HasPrefix(s.data[s.pos:], []byte("Infinity")) {
			s.pos = start
			return s.nonFinite()
		}
	}

	switch {
	case s.pos < len(s.data) && s.data[s.pos] == '0':
		s.pos++
	case s.pos < len(s.data) && s.data[s.pos] >= '1' && s.data[s.pos] <= '9':
		s.digits()
	default:
		return s.errorf("invalid number, expected digit")
	}

	kind := Integer
	if s.pos < len(s.data) && s.data[s.pos] == '.' {
		s.pos++
		if s.digits() == 0 {
			return s.errorf("invalid number, expected digit after decimal point")
		}
		kind = Float
	}
	if s.pos < len(s.data) && (s.data[s.pos] == 'e' || s.data[s.pos] == 'E') {
		s.pos++
		if s.pos < len(s.data) && (s.data[s.pos] == '+' || s.data[s.pos] == '-') {
			s.pos++
		}
		if s.digits() == 0 {
			return s.errorf("invalid number, expected digit in exponent")
		}
		kind = Float
	}

	return s.h.Number(string(s.data[start:s.pos]), kind)
}

func (s *scanner) digits() int {
	n := 0
	for s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		s.pos++
		n++
	}

	return n
}

func (s *scanner) array() error {
	s.pos++
	if err := s.h.BeginArray(); err != nil {
		return err
	}
	if err := s.skipSpace(); err != nil {
		return err
	}
	if s.pos < len(s.data) && s.data[s.pos] == ']' {
		s.pos++
		return s.h.EndArray()
	}

	for {
		if err := s.value(); err != nil {
			return err
		}
		if err := s.skipSpace(); err != nil {
			return err
		}
		if s.pos >= len(s.data) {
			return s.errorf("unexpected end of input in array")
		}
		switch s.data[s.pos] {
		case ',':
			s.pos++
			if err := s.skipSpace(); err != nil {
				return err
			}
			if s.lenient && s.pos < len(s.data) && s.data[s.pos] == ']' {
				s.pos++
				return s.h.EndArray()
			}
		case ']':
			s.pos++
			return s.h.EndArray()
		default:
			return s.errorf("invalid character %q after array element", s.data[s.pos])
		}
	}
}

func (s *scanner) object() error {
	s.pos++
	if err := s.h.BeginObject(); err != nil {
		return err
	}
	if err := s.skipSpace(); err != nil {
		return err
	}
	if s.pos < len(s.data) && s.data[s.pos] == '}' {
		s.pos++
		return s.h.EndObject()
	}

	for {
		if s.pos >= len(s.data) {
			return s.errorf("unexpected end of input in object")
		}
		if s.data[s.pos] != '"' {
			return s.errorf("invalid character %q looking for object key", s.data[s.pos])
		}
		key, err := s.str()
		if err != nil {
			return err
		}
		if err = s.h.Key(key); err != nil {
			return err
		}
		if err = s.skipSpace(); err != nil {
			return err
		}
		if s.pos >= len(s.data) || s.data[s.pos] != ':' {
			return s.errorf("expected ':' after object key")
		}
		s.pos++
		if err = s.skipSpace(); err != nil {
			return err
		}
		if err = s.value(); err != nil {
			return err
		}
		if err = s.skipSpace(); err != nil {
			return err
		}
		if s.pos >= len(s.data) {
			return s.errorf("unexpected end of input in object")
		}
		switch s.data[s.pos] {
		case ',':
			s.pos++
			if err = s.skipSpace(); err != nil {
				return err
			}
			if s.lenient && s.pos < len(s.data) && s.data[s.pos] == '}' {
				s.pos++
				return s.h.EndObject()
			}
		case '}':
			s.pos++
			return s.h.EndObject()
		default:
			return s.errorf("invalid character %q after object member", s.data[s.pos])
		}
	}
}

// str reads a quoted string starting at the opening quote.
func (s *scanner) str() (string, error) {
	s.pos++
	start := s.pos

	// Fast path: no escapes, ASCII printable only.
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '"' {
			out := string(s.data[start:s.pos])
			s.pos++
			return out, nil
		}
		if c == '\\' || c < 0x20 || c >= utf8.RuneSelf {
			break
		}
		s.pos++
	}

	var b strings.Builder
	b.Write(s.data[start:s.pos])
	for {
		if s.pos >= len(s.data) {
			return "", s.errorf("unterminated string")
		}
		c := s.data[s.pos]
		switch {
		case c == '"':
			s.pos++
			return b.String(), nil
		case c == '\\':
			if err := s.escape(&b); err != nil {
				return "", err
			}
		case c < 0x20:
			if !s.lenient {
				return "", s.errorf("invalid control character %q in string", c)
			}
			b.WriteByte(c)
			s.pos++
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			s.pos++
		default:
			r, size := utf8.DecodeRune(s.data[s.pos:])
			b.WriteRune(r) // RuneError for invalid bytes
			s.pos += size
		}
	}
}

func (s *scanner) escape(b *strings.Builder) error {
	if s.pos+1 >= len(s.data) {
		return s.errorf("unterminated string")
	}
	c := s.data[s.pos+1]
	s.pos += 2
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, err := s.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			r2 := utf8.RuneError
			if bytes.HasPrefix(s.data[s.pos:], []byte(`\u`)) {
				save := s.pos
				s.pos += 2
				lo, err := s.hex4()
				if err != nil {
					return err
				}
				if r2 = utf16.DecodeRune(r, lo); r2 == utf8.RuneError {
					s.pos = save
				}
			}
			r = r2
		}
		b.WriteRune(r)
	default:
		s.pos -= 2
		return s.errorf("invalid escape character %q", c)
	}

	return nil
}

func (s *scanner) hex4() (rune, error) {
	if s.pos+4 > len(s.data) {
		return 0, s.errorf("invalid unicode escape")
	}
	var r rune
	for _, c := range s.data[s.pos : s.pos+4] {
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, s.errorf("invalid unicode escape")
		}
	}
	s.pos += 4

	return r, nil
}
