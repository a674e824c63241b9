// Package diagnostics persists post-mortem crash dumps for faults dispatched
// through the faultline hook.
//
// The package implements two components:
//
//   - DumpWriter: captures one JSON crash dump per fault (message, origin,
//     stack, system snapshot, redacted environment), written atomically into
//     a bounded directory with oldest-first pruning.
//
//   - SystemInfo collection: a best-effort snapshot of memory, load, CPU
//     count and GPU inventory taken at fault time, for correlating crashes
//     with resource pressure.
//
// Dump persistence is supplementary to message dispatch and is only
// available on native targets; a dump failure is logged and otherwise
// discarded so it can never disturb fault propagation.
package diagnostics
