// Package artifact models the training pipeline as a DAG of file-producing
// nodes. Each node declares its logical name, the files it produces, the
// upstream nodes and source files it consumes, and the external command (or
// builtin function) that produces it.
//
// The graph is constructed once per run from the training configuration and
// is immutable afterwards; ordering and staleness decisions are made by the
// plan package, execution by the runner and pipeline packages.
package artifact
