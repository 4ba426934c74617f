// Package sqlgraph moves row batches in and out of SQL storage.
//
// The Scheduler writes a graph.Batch in rounds. Rows whose identity is
// transient and that have no pending placeholders are inserted; the
// storage-issued key is reported to the identity tracker, which lets
// dependent rows resolve their placeholders at the end of the round.
// Rows of persisted identities are updated in place. Whatever is still
// blocked after the last round is handed back as a leftover batch.
//
// The Planner loads an entity and its foreign properties with one query
// per property and nesting level: parent rows are grouped by their link
// tuple, children are fetched with a single IN query, filled recursively
// and then stitched back onto every parent sharing the tuple.
package sqlgraph
