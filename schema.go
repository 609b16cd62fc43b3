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
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema.json"

// compileSchema compiles a JSON Schema document.
func compileSchema(src []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}

// validateSchema checks the raw document against the configured schema.
// The document is parsed without the codec's hooks, keeping numbers as
// json.Number, so the schema sees the input as written.
func (c *Codec) validateSchema(data []byte) error {
	raw := &Codec{
		cfg:      &config{lenient: c.cfg.lenient, maxDepth: c.cfg.maxDepth},
		registry: &Registry{hooks: Hooks{Number: literalNumber}},
	}
	doc, err := raw.decode(data, raw.NewAssembler())
	if err != nil {
		return err
	}
	if err = c.cfg.schema.Validate(Plain(doc)); err != nil {
		return &SchemaError{Err: err}
	}

	return nil
}

// literalNumber keeps finite number literals as json.Number.
func literalNumber(v any) (any, error) {
	text, ok := v.(string)
	if !ok || ClassifyNumber(text) == NumberNonFinite {
		return nil, ErrSkip
	}

	return json.Number(text), nil
}
