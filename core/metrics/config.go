package metrics

import "github.com/kilianp07/quarterplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr"`
}
