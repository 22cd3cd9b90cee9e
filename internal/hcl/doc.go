// Package hcl implements the config.Loader interface for HCL training
// files. String attributes may reference host environment variables through
// the `env` namespace, e.g. output_dir = "${env.HOME}/train/out".
package hcl
