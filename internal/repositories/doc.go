// Package repositories implements SQLite persistence for library items and update failures.
//
// Key Implementations:
//   - [LibraryRepository] : Tracked items checked by the update job
//   - [MessageRepository] : Deduplicated failure messages, looked up or created by text
//   - [UpdateErrorRepository] : Per-item failures, replaced wholesale at the end of each update run
//
// Update errors carry a sequence number so listings come back in the order the update job recorded them.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
