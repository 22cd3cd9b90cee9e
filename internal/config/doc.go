// Package config defines the format-agnostic model of a training run, along
// with the Loader interface for reading it from a configuration file.
//
// The `config.Training` value is the single source of truth for the
// `artifact` and `plan` packages. Concrete loader implementations, such as
// for HCL, are provided in separate packages.
package config
