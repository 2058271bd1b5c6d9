// Package reindex rebuilds the stored vectors of a corpus after the
// embedding model changes.
//
// Sources are streamed from the store in batches, embedded with bounded
// retry, normalized, and written back under the new model's vector
// namespace. Content that already has a vector for the target model is
// skipped unless a full rebuild is forced. Progress is reported through
// a callback interface so both library callers and the CLI can observe
// a run.
package reindex
