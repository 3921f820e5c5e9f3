// Package tasks merges saved tracks from several platforms into one catalog with real-time progress reporting.
//
// # Export
//
// [ExportEngine.Run] drives one export run:
//
//  1. Reads the existing catalog from the [CatalogStore]. A read failure fails the run before any platform is touched.
//  2. For each requested platform, in the order given, builds a pager with the [SourceFactory], authorizes it and
//     fetches every page. Platforms and pages are processed one at a time.
//  3. Concatenates the existing catalog with the fetched batches and, when enabled, removes duplicates with [Dedup].
//  4. Sorts with [SortRecords] when enabled, then writes the catalog back.
//
// The first error aborts the run. Nothing is written in that case, so a failed run never leaves a partial catalog.
//
// # Dedup
//
// Records are identified by their normalization key: trimmed, lowercased title and author. The first record of a
// key wins and later ones are dropped, whatever their other fields hold.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct carries the [Phase], the platform being processed, step counters and a message.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] (repositories.RunRepository) stores one row per run with its counts and outcome.
// Recording errors are logged and ignored.
package tasks
