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
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/jsonhook"
)

// DefaultMeterName is the instrumentation scope used when [WithMeterName]
// is not given.
const DefaultMeterName = "rivaas.dev/jsonhook"

// Option configures a [Recorder].
type Option func(*Recorder)

// WithMeterProvider sets the OpenTelemetry [metric.MeterProvider] the
// instruments are created from.
//
// Example:
//
//	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
//	recorder := metrics.MustNew(metrics.WithMeterProvider(mp))
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.provider = provider
	}
}

// WithMeterName sets the instrumentation scope name.
func WithMeterName(name string) Option {
	return func(r *Recorder) {
		r.meterName = name
	}
}

// WithNext forwards every event to next after it is recorded.
//
// Example:
//
//	metrics.WithNext(jsonhook.DefaultEventHandler(logger))
func WithNext(next jsonhook.EventHandler) Option {
	return func(r *Recorder) {
		r.next = next
	}
}
