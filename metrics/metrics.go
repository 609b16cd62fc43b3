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

package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/jsonhook"
)

// ErrMeterNameEmpty is returned by [New] when the meter name is empty.
var ErrMeterNameEmpty = errors.New("metrics: meter name cannot be empty")

// Recorder counts codec events. It is safe for concurrent use.
type Recorder struct {
	provider  metric.MeterProvider
	meterName string
	next      jsonhook.EventHandler

	hookCalls metric.Int64Counter
	failures  metric.Int64Counter
	limits    metric.Int64Counter
}

// New creates a Recorder and its instruments.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{meterName: DefaultMeterName}
	for _, opt := range opts {
		opt(r)
	}
	if r.meterName == "" {
		return nil, ErrMeterNameEmpty
	}
	if r.provider == nil {
		r.provider = otel.GetMeterProvider()
	}

	meter := r.provider.Meter(r.meterName)
	var err error
	if r.hookCalls, err = meter.Int64Counter("jsonhook.hook.calls",
		metric.WithDescription("Hook invocations by slot and outcome"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create hook counter: %w", err)
	}
	if r.failures, err = meter.Int64Counter("jsonhook.operation.failures",
		metric.WithDescription("Failed codec operations"),
		metric.WithUnit("{failure}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}
	if r.limits, err = meter.Int64Counter("jsonhook.limit.exceeded",
		metric.WithDescription("Depth and restart limit violations"),
		metric.WithUnit("{violation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create limit counter: %w", err)
	}

	return r, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics.MustNew: %v", err))
	}

	return r
}

// Handler returns the event handler to pass to [jsonhook.WithEventHandler].
func (r *Recorder) Handler() jsonhook.EventHandler {
	return func(e jsonhook.Event) {
		r.record(context.Background(), e)
		if r.next != nil {
			r.next(e)
		}
	}
}

func (r *Recorder) record(ctx context.Context, e jsonhook.Event) {
	switch e.Message {
	case jsonhook.MessageHookReplaced:
		r.hookCall(ctx, e, "replaced")
	case jsonhook.MessageHookSkipped:
		r.hookCall(ctx, e, "skipped")
	case jsonhook.MessageHookFailed:
		r.hookCall(ctx, e, "failed")
	case jsonhook.MessageDepthExceeded:
		r.limits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit", "depth")))
	case jsonhook.MessageRestartsExceeded:
		r.limits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit", "restarts")))
	default:
		if e.Type == jsonhook.EventError {
			r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("event", e.Message)))
		}
	}
}

func (r *Recorder) hookCall(ctx context.Context, e jsonhook.Event, outcome string) {
	r.hookCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("slot", arg(e.Args, "slot")),
		attribute.String("outcome", outcome),
	))
}

// arg returns the string value of key in slog-style key-value pairs.
func arg(args []any, key string) string {
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok && k == key {
			return fmt.Sprint(args[i+1])
		}
	}

	return ""
}
