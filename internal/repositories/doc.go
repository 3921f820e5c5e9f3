// Package repositories implements SQLite persistence for the catalog and the export run history.
//
// Key Implementations:
//   - [RecordRepository] : the catalog, one row per record, replaced as a whole in one transaction
//   - [RunRepository] : export run history with status and counts, implementing models.Repository
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
