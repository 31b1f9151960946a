// Package metrics holds the Prometheus and InfluxDB implementations of the
// core metrics sinks. Importing it registers the "nop", "prometheus" and
// "influx" sink types with the core factory.
package metrics
