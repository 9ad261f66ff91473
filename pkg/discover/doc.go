// Package discover maintains the content visibility index and serves the
// public discover feed.
//
// Five independently owned entity types (projects, tasks, notes, media assets
// and events) each carry a visibility. The index mirrors that visibility, the
// owner and the timestamps of every item in one table keyed by
// (content type, content id), so the feed can be served from a single ordered
// scan instead of a five-way union.
//
// # Index Consistency
//
// The index is a repairable cache, not a system of record. Entity mutation
// paths call a SyncHook after their own write succeeds; the hook makes one
// attempt and only logs a failure. ReconcileAll re-upserts every live source
// item and CleanupOrphans removes rows whose source is gone, so any drift left
// by a failed sync is repaired by the next sweep.
//
// # Feed Pages
//
// Feed pages are keyset paginated on (created_at, id) in descending order and
// hydrated per item through one ContentResolver per source variant. Items whose
// source no longer resolves are dropped from the page without backfilling.
package discover
