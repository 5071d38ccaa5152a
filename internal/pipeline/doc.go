// Package pipeline drives a benchmark set through the convert, optimize,
// verify and evaluate stages.
//
// A Driver owns its units and configuration; nothing is shared between
// drivers. Configuration is changed only between stages. A stage runs its
// task once per unit, sequentially when Jobs is 1 and on a bounded pool
// otherwise, and always returns a BatchReport covering every unit: a unit
// failure is recorded, logged and never aborts the batch.
//
// Errors returned directly from a stage are configuration errors detected
// before any unit runs (missing mode, missing trace collector).
package pipeline
