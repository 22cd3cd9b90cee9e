package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads a training run description from the given path and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, path string) (*Training, error)
}
