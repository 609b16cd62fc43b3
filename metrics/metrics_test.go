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

package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rivaas.dev/jsonhook"
)

// newTestRecorder returns a Recorder backed by a manual reader.
func newTestRecorder(t *testing.T, opts ...Option) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		//nolint:errcheck // Test cleanup
		_ = provider.Shutdown(context.Background())
	})

	r, err := New(append([]Option{WithMeterProvider(provider)}, opts...)...)
	require.NoError(t, err)

	return r, reader
}

// counts collects the sum of every data point of the named counter, keyed
// by the value of attribute key.
func counts(t *testing.T, reader *sdkmetric.ManualReader, name string, keys ...attribute.Key) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				label := ""
				for i, k := range keys {
					v, _ := dp.Attributes.Value(k)
					if i > 0 {
						label += "/"
					}
					label += v.AsString()
				}
				out[label] += dp.Value
			}
		}
	}

	return out
}

func TestRecorder_HookCalls(t *testing.T) {
	t.Parallel()

	r, reader := newTestRecorder(t)
	codec := jsonhook.TestCodec(t,
		jsonhook.WithEventHandler(r.Handler()),
		jsonhook.WithStringHook(func(v any) (any, error) {
			if v == "keep" {
				return nil, jsonhook.ErrSkip
			}
			return v, nil
		}),
		jsonhook.WithNumberHook(func(any) (any, error) {
			return nil, errors.New("no numbers")
		}),
	)

	_, err := codec.DecodeString(`["keep", "x", "y"]`)
	require.NoError(t, err)
	_, err = codec.DecodeString(`[1]`)
	require.Error(t, err)

	assert.Equal(t, map[string]int64{
		"string/skipped":  1,
		"string/replaced": 2,
		"number/failed":   1,
	}, counts(t, reader, "jsonhook.hook.calls", "slot", "outcome"))
	assert.Equal(t, map[string]int64{
		jsonhook.MessageDecodeFailed: 1,
	}, counts(t, reader, "jsonhook.operation.failures", "event"))
}

func TestRecorder_Limits(t *testing.T) {
	t.Parallel()

	r, reader := newTestRecorder(t)
	codec := jsonhook.TestCodec(t,
		jsonhook.WithEventHandler(r.Handler()),
		jsonhook.WithMaxDepth(2),
		jsonhook.WithMaxRestarts(3),
		jsonhook.WithValueHook(func(v any) (any, error) {
			if s, ok := v.(string); ok {
				return s + "!", nil
			}
			return nil, jsonhook.ErrSkip
		}),
	)

	_, err := codec.DecodeString(`[[[1]]]`)
	require.Error(t, err)
	_, err = codec.Encode("loop")
	require.Error(t, err)

	assert.Equal(t, map[string]int64{
		"depth":    1,
		"restarts": 1,
	}, counts(t, reader, "jsonhook.limit.exceeded", "limit"))
	assert.Equal(t, map[string]int64{
		jsonhook.MessageDecodeFailed: 1,
		jsonhook.MessageEncodeFailed: 1,
	}, counts(t, reader, "jsonhook.operation.failures", "event"))
}

func TestRecorder_Next(t *testing.T) {
	t.Parallel()

	var seen []string
	r, _ := newTestRecorder(t, WithNext(func(e jsonhook.Event) {
		seen = append(seen, e.Message)
	}))

	r.Handler()(jsonhook.Event{Type: jsonhook.EventError, Message: "bind failed"})
	assert.Equal(t, []string{"bind failed"}, seen)
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(WithMeterName(""))
	require.ErrorIs(t, err, ErrMeterNameEmpty)

	assert.PanicsWithValue(t, "metrics.MustNew: metrics: meter name cannot be empty", func() {
		MustNew(WithMeterName(""))
	})

	r, err := New()
	require.NoError(t, err, "the global provider is used by default")
	assert.NotNil(t, r.Handler())
}

func TestArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{name: "found", args: []any{"slot", "key", "kind", "string"}, want: "key"},
		{name: "missing", args: []any{"kind", "string"}, want: ""},
		{name: "odd length", args: []any{"kind", "string", "slot"}, want: ""},
		{name: "non-string value", args: []any{"slot", 3}, want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, arg(tt.args, "slot"))
		})
	}
}
