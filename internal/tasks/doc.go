// Package tasks runs the library update pass with real-time progress reporting.
//
// # Update Pass
//
// [Updater.Run] walks every library item in insertion order:
//   - Paces checks with a [rate.Limiter] so sources are not hammered
//   - Checks each item through a [Checker] ([HTTPChecker] in production)
//   - Deduplicates failure descriptions into shared messages
//   - Replaces the previous pass's errors under a fresh run id
//   - Prunes messages no error references any longer
//
// A cancelled pass records nothing, so the previous pass's errors stay intact.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
