// Package infra holds the adapters that talk to the outside world on behalf
// of the planner: structured logging, Prometheus and InfluxDB sinks, and the
// MQTT plan publisher. Scheduling itself stays in core and never imports
// these packages.
package infra
