// Package pipeline provides a sequential pipeline for processing data.
//
// A pipeline is an ordered sequence of steps. Each step receives a shared
// Context, a string-keyed mapping of arbitrary values, and returns the
// Context the next step should see. Steps communicate exclusively through
// named keys, so a pipeline can be assembled from independent steps without
// any compile-time schema.
//
// The pipeline stops on the first encountered error, preventing further
// processing and discarding partial results. A run either fully succeeds and
// returns a complete Context, or fails with the error of the named step that
// raised it.
//
// The ForEach step composes pipelines: it owns a sub-pipeline and replays it
// once per item of an iteration domain, collecting the per-iteration outputs
// under a results key. Execution is strictly sequential everywhere, within a
// pipeline and across iterations.
package pipeline
