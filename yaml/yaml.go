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

// Package yaml runs jsonhook hooks over YAML documents.
//
// Decode parses YAML with gopkg.in/yaml.v3 and feeds the node tree to a
// [jsonhook.Assembler], so the decode hooks see YAML values exactly as they
// see JSON ones: !!int scalars go to the number hook, !!float scalars to the
// float hook, and mappings and sequences to the object and array hooks after
// their members. Encode reduces a value with the encode hooks and writes the
// result as YAML, keeping object member order.
//
// Example:
//
//	v, err := yaml.Decode(body, yaml.WithCodecOptions(
//	    jsonhook.WithStringHook(expandEnv),
//	))
package yaml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"

	"rivaas.dev/jsonhook"
)

// DefaultIndent is the number of spaces Encode indents nested blocks by.
const DefaultIndent = 2

// Option configures YAML decoding and encoding.
type Option func(*config)

// config holds YAML-specific configuration.
type config struct {
	codec     *jsonhook.Codec
	codecOpts []jsonhook.Option
	indent    int
}

// WithCodec runs the hooks and limits of an existing codec.
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

// WithIndent sets the indentation Encode uses. The default is [DefaultIndent].
func WithIndent(spaces int) Option {
	return func(cfg *config) {
		cfg.indent = spaces
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{indent: DefaultIndent}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func (cfg *config) newCodec() (*jsonhook.Codec, error) {
	if cfg.codec != nil {
		return cfg.codec, nil
	}

	return jsonhook.New(cfg.codecOpts...)
}

// Decode parses one YAML document and runs the codec's decode hooks.
//
// Mapping keys must be scalars. Aliases are expanded in place. Scalars with
// tags other than !!null, !!bool, !!int and !!float decode as strings.
//
// Example:
//
//	v, err := yaml.Decode([]byte("ports: [80, 443]"))
func Decode(data []byte, opts ...Option) (any, error) {
	cfg := applyOptions(opts)
	codec, err := cfg.newCodec()
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, &jsonhook.SyntaxError{Offset: -1, Msg: err.Error(), Err: err}
	}
	if doc.Kind == 0 {
		return nil, &jsonhook.SyntaxError{Offset: -1, Msg: "empty YAML document", Err: jsonhook.ErrIncompleteInput}
	}

	a := codec.NewAssembler()
	if err = walk(a, &doc); err != nil {
		return nil, err
	}

	return a.Result()
}

// DecodeReader reads r to the end and decodes it. Input beyond the codec's
// maximum size (see [jsonhook.WithMaxInputSize]) fails before parsing.
func DecodeReader(r io.Reader, opts ...Option) (any, error) {
	codec, err := applyOptions(opts).newCodec()
	if err != nil {
		return nil, err
	}
	data, err := codec.ReadInput(r)
	if err != nil {
		return nil, err
	}

	return Decode(data, append(opts[:len(opts):len(opts)], WithCodec(codec))...)
}

func walk(a *jsonhook.Assembler, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return a.Null()
		}
		return walk(a, n.Content[0])
	case yaml.AliasNode:
		return walk(a, n.Alias)
	case yaml.SequenceNode:
		if err := a.BeginArray(); err != nil {
			return err
		}
		for _, item := range n.Content {
			if err := walk(a, item); err != nil {
				return err
			}
		}
		return a.EndArray()
	case yaml.MappingNode:
		if err := a.BeginObject(); err != nil {
			return err
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind == yaml.AliasNode {
				key = key.Alias
			}
			if key.Kind != yaml.ScalarNode {
				return syntaxErrorf(key, "mapping key must be a scalar")
			}
			if err := a.Key(key.Value); err != nil {
				return err
			}
			if err := walk(a, n.Content[i+1]); err != nil {
				return err
			}
		}
		return a.EndObject()
	case yaml.ScalarNode:
		return scalar(a, n)
	default:
		return syntaxErrorf(n, "unsupported node kind %d", n.Kind)
	}
}

func scalar(a *jsonhook.Assembler, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		return a.Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return syntaxErrorf(n, "invalid bool %q", n.Value)
		}
		return a.Bool(b)
	case "!!int":
		text, err := intText(n)
		if err != nil {
			return err
		}
		return a.Number(text, jsonhook.NumberInteger)
	case "!!float":
		return float(a, n)
	default:
		return a.String(n.Value)
	}
}

// intText normalizes YAML integer forms (0x1f, 0o17, 1_000) to decimal.
func intText(n *yaml.Node) (string, error) {
	var i int64
	if err := n.Decode(&i); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	var u uint64
	if err := n.Decode(&u); err == nil {
		return strconv.FormatUint(u, 10), nil
	}
	if b, ok := new(big.Int).SetString(n.Value, 0); ok {
		return b.String(), nil
	}

	return "", syntaxErrorf(n, "invalid integer %q", n.Value)
}

func float(a *jsonhook.Assembler, n *yaml.Node) error {
	switch n.Value {
	case ".nan", ".NaN", ".NAN":
		return a.Number("NaN", jsonhook.NumberNonFinite)
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF":
		return a.Number("Infinity", jsonhook.NumberNonFinite)
	case "-.inf", "-.Inf", "-.INF":
		return a.Number("-Infinity", jsonhook.NumberNonFinite)
	}

	// Literals that are already valid JSON numbers keep their exact text.
	// Integers too large for 64 bits resolve as floats in YAML.
	if json.Valid([]byte(n.Value)) {
		if kind := jsonhook.ClassifyNumber(n.Value); kind != jsonhook.NumberNonFinite {
			return a.Number(n.Value, kind)
		}
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return syntaxErrorf(n, "invalid float %q", n.Value)
	}

	return a.Number(jsonhook.FormatFloat(f), jsonhook.NumberFloat)
}

func syntaxErrorf(n *yaml.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &jsonhook.SyntaxError{Offset: -1, Msg: fmt.Sprintf("line %d column %d: %s", n.Line, n.Column, msg)}
}

// Encode reduces v with the codec's encode hooks and writes it as YAML.
//
// Example:
//
//	out, err := yaml.Encode(cfg, yaml.WithCodecOptions(
//	    jsonhook.WithDefaultHook(jsonhook.StructHookWithTag("yaml")),
//	))
func Encode(v any, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	codec, err := cfg.newCodec()
	if err != nil {
		return nil, err
	}

	reduced, err := codec.Reduce(v)
	if err != nil {
		return nil, err
	}
	node, err := toNode(reduced)
	if err != nil {
		return nil, err
	}

	return writeNode(node, cfg.indent)
}

func writeNode(node *yaml.Node, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return nil, &jsonhook.WriteError{Format: "YAML", Err: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &jsonhook.WriteError{Format: "YAML", Err: err}
	}

	return buf.Bytes(), nil
}

// toNode converts a reduced tree into a yaml.Node, keeping member order.
func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(t)), nil
	case string:
		return scalarNode("!!str", t), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(t, 10)), nil
	case uint64:
		return scalarNode("!!int", strconv.FormatUint(t, 10)), nil
	case *big.Int:
		return scalarNode("!!int", t.String()), nil
	case float64:
		return scalarNode("!!float", floatText(t)), nil
	case json.Number:
		return numberNode(string(t)), nil
	case jsonhook.Number:
		return numberNode(string(t)), nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			child, err := toNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case *jsonhook.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, e := range t.All() {
			child, err := toNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalarNode("!!str", k), child)
		}
		return n, nil
	default:
		return nil, &jsonhook.UnsupportedValueError{Value: fmt.Sprintf("%T", v), Reason: "not a reduced value"}
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func numberNode(text string) *yaml.Node {
	switch jsonhook.ClassifyNumber(text) {
	case jsonhook.NumberInteger:
		return scalarNode("!!int", text)
	case jsonhook.NumberNonFinite:
		f, _ := strconv.ParseFloat(text, 64)
		return scalarNode("!!float", floatText(f))
	default:
		return scalarNode("!!float", text)
	}
}

func floatText(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return jsonhook.FormatFloat(f)
	}
}
