// Package observability provides the append-only JSONL event log that traces
// engine activity (thoughts accepted, assumptions declared, invalidated, and
// verified) and a metrics calculator that derives aggregate counts from it
// on demand.
//
// The event log is write-only from the engine's point of view: it is never
// read back to restore session state, which stays memory-resident and is
// lost on process restart by design.
package observability
