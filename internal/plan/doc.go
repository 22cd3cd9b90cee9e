// Package plan computes the minimal, ordered set of artifact nodes that must
// be rebuilt to bring a target up to date. Staleness is mtime-based and
// propagates downstream: a rebuilt dependency forces rebuilding every
// consumer regardless of timestamps, so clock skew can never produce a
// staleness false-negative.
package plan
