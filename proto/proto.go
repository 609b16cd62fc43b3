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

// Package proto lets jsonhook encode Protocol Buffers messages.
//
// [NewHook] returns a default-slot hook that presents a message to the
// encoder as a mapping of its fields, repeated fields as sequences and map
// fields as mappings, so every other encode hook sees message contents like
// any other value. Well-known types take their canonical JSON forms:
// Timestamp and Duration become strings, wrappers become their value, and
// Struct, Value and ListValue become plain maps, values and slices.
//
// [Unmarshal] goes the other way: the JSON is decoded with the codec's
// decode hooks and the result is bound to a message with protojson.
//
// Example:
//
//	out, err := proto.Encode(msg, proto.WithOrigNames())
package proto

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"rivaas.dev/jsonhook"
)

// Message is an alias for proto.Message to simplify imports.
type Message = proto.Message

// Option configures message encoding and decoding.
type Option func(*config)

// config holds proto-specific configuration.
type config struct {
	codec           *jsonhook.Codec
	codecOpts       []jsonhook.Option
	emitUnpopulated bool
	origNames       bool
	enumNumbers     bool
	discardUnknown  bool
}

// WithCodec runs the hooks and limits of an existing codec. Its default
// slot should hold a hook from [NewHook] for Encode to handle messages.
// It takes precedence over [WithCodecOptions].
func WithCodec(c *jsonhook.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithCodecOptions builds the codec from jsonhook options.
func WithCodecOptions(opts ...jsonhook.Option) Option {
	return func(cfg *config) {
		cfg.codecOpts = append(cfg.codecOpts, opts...)
	}
}

// WithEmitUnpopulated includes fields that are not set, with their default
// values. Unset oneof members are still omitted.
func WithEmitUnpopulated() Option {
	return func(cfg *config) {
		cfg.emitUnpopulated = true
	}
}

// WithOrigNames uses proto field names instead of lowerCamelCase JSON names.
func WithOrigNames() Option {
	return func(cfg *config) {
		cfg.origNames = true
	}
}

// WithEnumNumbers writes enum values as numbers instead of names.
func WithEnumNumbers() Option {
	return func(cfg *config) {
		cfg.enumNumbers = true
	}
}

// WithDiscardUnknown makes Unmarshal ignore fields the message does not
// declare.
func WithDiscardUnknown() Option {
	return func(cfg *config) {
		cfg.discardUnknown = true
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// NewHook returns a default-slot hook that turns proto messages into
// mappings. Values that are not messages are skipped.
//
// Example:
//
//	codec := jsonhook.MustNew(jsonhook.WithDefaultHook(proto.NewHook()))
func NewHook(opts ...Option) jsonhook.Hook {
	cfg := applyOptions(opts)
	return cfg.convert
}

// Encode writes msg as JSON, running the codec's encode hooks over its
// fields.
func Encode(msg Message, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	codec := cfg.codec
	if codec == nil {
		var err error
		copts := append(slices.Clone(cfg.codecOpts), jsonhook.WithDefaultHook(cfg.convert))
		if codec, err = jsonhook.New(copts...); err != nil {
			return nil, err
		}
	}

	return codec.Encode(msg)
}

// Unmarshal decodes data with the codec's decode hooks and binds the result
// to msg using protojson.
//
// Example:
//
//	var req pb.CreateUserRequest
//	err := proto.Unmarshal(body, &req, proto.WithCodecOptions(
//	    jsonhook.WithStringHook(trimSpace),
//	))
func Unmarshal(data []byte, msg Message, opts ...Option) error {
	cfg := applyOptions(opts)
	codec := cfg.codec
	if codec == nil {
		var err error
		if codec, err = jsonhook.New(cfg.codecOpts...); err != nil {
			return err
		}
	}

	v, err := codec.Decode(data)
	if err != nil {
		return err
	}
	canonical, err := jsonhook.Encode(v, jsonhook.WithLenient())
	if err != nil {
		return &jsonhook.BindError{Type: reflect.TypeOf(msg), Reason: "decode", Err: err}
	}
	uopts := protojson.UnmarshalOptions{DiscardUnknown: cfg.discardUnknown}
	if err = uopts.Unmarshal(canonical, msg); err != nil {
		return &jsonhook.BindError{Type: reflect.TypeOf(msg), Reason: "decode", Err: err}
	}

	return nil
}

// convert is the default-slot hook.
func (cfg *config) convert(v any) (any, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, jsonhook.ErrSkip
	}

	switch m := msg.(type) {
	case *timestamppb.Timestamp:
		if err := m.CheckValid(); err != nil {
			return nil, err
		}
		return m.AsTime().Format(time.RFC3339Nano), nil
	case *durationpb.Duration:
		if err := m.CheckValid(); err != nil {
			return nil, err
		}
		return formatDuration(m.GetSeconds(), m.GetNanos()), nil
	case *structpb.Struct:
		return m.AsMap(), nil
	case *structpb.Value:
		return m.AsInterface(), nil
	case *structpb.ListValue:
		return m.AsSlice(), nil
	}

	rm := msg.ProtoReflect()
	if isWrapper(rm.Descriptor()) {
		fd := rm.Descriptor().Fields().ByName("value")
		return cfg.scalar(fd, rm.Get(fd)), nil
	}

	return cfg.newMessageMapping(rm), nil
}

// formatDuration writes seconds and nanos as decimal seconds with 0, 3, 6
// or 9 fractional digits and an "s" suffix, e.g. "1.500s".
func formatDuration(secs int64, nanos int32) string {
	sign := ""
	if secs < 0 || nanos < 0 {
		sign, secs, nanos = "-", -secs, -nanos
	}
	s := fmt.Sprintf("%s%d.%09d", sign, secs, nanos)
	s = strings.TrimSuffix(s, "000")
	s = strings.TrimSuffix(s, "000")
	s = strings.TrimSuffix(s, ".000")

	return s + "s"
}

func isWrapper(md protoreflect.MessageDescriptor) bool {
	if md.ParentFile().Package() != "google.protobuf" {
		return false
	}

	return strings.HasSuffix(string(md.Name()), "Value") && md.Fields().Len() == 1 &&
		md.Fields().Get(0).Name() == "value"
}

func (cfg *config) fieldName(fd protoreflect.FieldDescriptor) string {
	if cfg.origNames {
		return string(fd.Name())
	}

	return fd.JSONName()
}

// value converts a field value into something the encoder can classify.
func (cfg *config) value(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		return listSequence{cfg: cfg, fd: fd, list: v.List()}
	case fd.IsMap():
		return newMapMapping(cfg, fd, v.Map())
	default:
		return cfg.scalar(fd, v)
	}
}

func (cfg *config) scalar(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		n := v.Enum()
		if !cfg.enumNumbers {
			if ev := fd.Enum().Values().ByNumber(n); ev != nil {
				return string(ev.Name())
			}
		}
		return int32(n)
	case protoreflect.BytesKind:
		return base64.StdEncoding.EncodeToString(v.Bytes())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	default:
		return v.Interface()
	}
}

// messageMapping presents a message as a mapping of field names to values.
type messageMapping struct {
	cfg    *config
	msg    protoreflect.Message
	names  []any
	fields map[string]protoreflect.FieldDescriptor
}

func (cfg *config) newMessageMapping(m protoreflect.Message) messageMapping {
	mm := messageMapping{cfg: cfg, msg: m, fields: make(map[string]protoreflect.FieldDescriptor)}
	fds := m.Descriptor().Fields()
	for i := range fds.Len() {
		fd := fds.Get(i)
		if !m.Has(fd) && (!cfg.emitUnpopulated || fd.ContainingOneof() != nil) {
			continue
		}
		name := cfg.fieldName(fd)
		mm.names = append(mm.names, name)
		mm.fields[name] = fd
	}

	return mm
}

// Keys implements jsonhook.Mapping.
func (m messageMapping) Keys() []any {
	return m.names
}

// Lookup implements jsonhook.Mapping.
func (m messageMapping) Lookup(key any) (any, bool) {
	name, ok := key.(string)
	if !ok {
		return nil, false
	}
	fd, ok := m.fields[name]
	if !ok {
		return nil, false
	}
	if fd.Kind() == protoreflect.MessageKind && !fd.IsList() && !fd.IsMap() && !m.msg.Has(fd) {
		return nil, true
	}

	return m.cfg.value(fd, m.msg.Get(fd)), true
}

// listSequence presents a repeated field as a sequence.
type listSequence struct {
	cfg  *config
	fd   protoreflect.FieldDescriptor
	list protoreflect.List
}

// Len implements jsonhook.Sequence.
func (l listSequence) Len() int {
	return l.list.Len()
}

// At implements jsonhook.Sequence.
func (l listSequence) At(i int) any {
	return l.cfg.scalar(l.fd, l.list.Get(i))
}

// mapMapping presents a map field as a mapping with keys in sorted order.
type mapMapping struct {
	cfg  *config
	fd   protoreflect.FieldDescriptor
	m    protoreflect.Map
	keys []any
}

func newMapMapping(cfg *config, fd protoreflect.FieldDescriptor, m protoreflect.Map) mapMapping {
	mm := mapMapping{cfg: cfg, fd: fd, m: m}
	m.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
		mm.keys = append(mm.keys, k.Interface())
		return true
	})
	slices.SortFunc(mm.keys, func(a, b any) int {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})

	return mm
}

// Keys implements jsonhook.Mapping.
func (m mapMapping) Keys() []any {
	return m.keys
}

// Lookup implements jsonhook.Mapping.
func (m mapMapping) Lookup(key any) (any, bool) {
	mk := protoreflect.ValueOf(key).MapKey()
	if !m.m.Has(mk) {
		return nil, false
	}

	return m.cfg.scalar(m.fd.MapValue(), m.m.Get(mk)), true
}
