package app

import "errors"

// Config holds all the run-level options for an App instance.
type Config struct {
	// ConfigPath points at the HCL training file.
	ConfigPath string

	// Target selects an intermediate artifact node by name. Empty means
	// the final traineddata.
	Target string

	// Force rebuilds every reachable node, ignoring staleness.
	Force bool

	// Clean removes the intermediate work directory after a fully
	// successful run. Off by default: cleaning defeats incremental
	// re-runs.
	Clean bool

	// Workers bounds concurrent execution of independent steps; 1 means
	// strictly sequential.
	Workers int

	LogFormat string
	LogLevel  string
}

// NewConfig validates the run-level options.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
