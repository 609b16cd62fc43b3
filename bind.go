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
	"encoding"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// DecodeTo decodes data with the codec's hooks and binds the result to out,
// which must be a non-nil pointer. Objects bind to structs by the configured
// tag name ("json" by default) and to maps; strings bind to time.Duration and
// RFC 3339 time.Time fields.
//
// With [WithStructValidation] the bound value is then validated with
// go-playground/validator struct tags.
//
// Example:
//
//	var cfg ServerConfig
//	if err := codec.DecodeTo(data, &cfg); err != nil {
//	    return err
//	}
func (c *Codec) DecodeTo(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &BindError{Type: reflect.TypeOf(out), Reason: "decode", Err: ErrOutMustBePointer}
	}

	v, err := c.Decode(data)
	if err != nil {
		return err
	}

	return c.bind(v, out)
}

func (c *Codec) bind(v, out any) error {
	typ := reflect.TypeOf(out)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          c.cfg.tagName,
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return &BindError{Type: typ, Reason: "decode", Err: err}
	}
	if err = decoder.Decode(Plain(v)); err != nil {
		c.emitError(MessageBindFailed, "type", typ.String(), "error", err)
		return &BindError{Type: typ, Reason: "decode", Err: err}
	}

	if c.cfg.structValidation && isStruct(typ) {
		if err = validator.New(validator.WithRequiredStructEnabled()).Struct(out); err != nil {
			c.emitError(MessageValidationFailed, "type", typ.String(), "error", err)
			return &BindError{Type: typ, Reason: "validate", Err: err}
		}
	}

	return nil
}

func isStruct(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct
}

// DecodeTo decodes data with a codec built from opts and binds it to out.
func DecodeTo(data []byte, out any, opts ...Option) error {
	c, err := New(opts...)
	if err != nil {
		return err
	}

	return c.DecodeTo(data, out)
}

// DecodeAs decodes data with a codec built from opts and binds it to a T.
//
// Example:
//
//	user, err := jsonhook.DecodeAs[User](data, jsonhook.WithStructValidation())
func DecodeAs[T any](data []byte, opts ...Option) (T, error) {
	var result T
	c, err := New(opts...)
	if err != nil {
		return result, err
	}
	if err = c.DecodeTo(data, &result); err != nil {
		return result, err
	}

	return result, nil
}

// DecodeAsWith binds data to a T using the [Codec]'s hooks and config.
//
// Example:
//
//	user, err := jsonhook.DecodeAsWith[User](codec, data)
func DecodeAsWith[T any](c *Codec, data []byte) (T, error) {
	var result T
	if err := c.DecodeTo(data, &result); err != nil {
		return result, err
	}

	return result, nil
}

// StructHook is a default-slot hook that encodes structs, and pointers to
// structs, as mappings keyed by their "json" tag names. Values implementing
// encoding.TextMarshaler become their text. Anything else is skipped.
//
// Example:
//
//	out, err := jsonhook.Encode(user, jsonhook.WithDefaultHook(jsonhook.StructHook))
func StructHook(v any) (any, error) {
	return structToMap(v, "json")
}

// StructHookWithTag is [StructHook] reading field names from tag.
func StructHookWithTag(tag string) Hook {
	return func(v any) (any, error) {
		return structToMap(v, tag)
	}
}

func structToMap(v any, tag string) (any, error) {
	if tm, ok := v.(encoding.TextMarshaler); ok {
		text, err := tm.MarshalText()
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, ErrSkip
	}

	out := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tag,
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err = decoder.Decode(rv.Interface()); err != nil {
		return nil, err
	}

	return out, nil
}
