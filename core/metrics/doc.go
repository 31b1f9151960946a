// Package metrics defines how planning runs are observed. Sinks such as
// PromSink and InfluxSink (see infra/metrics) record one RunEvent per
// scheduling run and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
package metrics
