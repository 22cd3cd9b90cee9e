// Package app wires configuration loading, graph construction, planning and
// execution into a single Run entry point. Embedders use it directly; the
// CLI is a thin translation layer on top that turns the returned report into
// an exit code.
package app
