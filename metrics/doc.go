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

// Package metrics records jsonhook codec events as OpenTelemetry metrics.
//
// A [Recorder] turns the events a codec emits into counters: hook calls by
// slot and outcome, failed operations, and exceeded limits. Attach it with
// [jsonhook.WithEventHandler]:
//
//	recorder := metrics.MustNew(metrics.WithMeterProvider(mp))
//	codec := jsonhook.MustNew(
//	    jsonhook.WithEventHandler(recorder.Handler()),
//	    jsonhook.WithStringHook(trimSpace),
//	)
//
// # Instruments
//
//   - jsonhook.hook.calls: hook invocations, with "slot" and "outcome"
//     ("replaced", "skipped" or "failed") attributes
//   - jsonhook.operation.failures: failed decode, encode, bind and validation
//     calls, with an "event" attribute
//   - jsonhook.limit.exceeded: depth and restart limit violations, with a
//     "limit" attribute ("depth" or "restarts")
//
// # Logging
//
// A Recorder does not log. Use [WithNext] to forward every event to another
// handler, typically [jsonhook.DefaultEventHandler].
//
// # Global State
//
// Without [WithMeterProvider] the global provider from otel.GetMeterProvider
// is used. The package never sets the global provider.
package metrics
