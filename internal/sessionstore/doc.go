// Package sessionstore persists workflow snapshots in SQLite so a workflow
// can be resumed across CLI invocations.
//
// Persistence is opt-in (session.persist in the config). Only explicit
// selections and the last generation result are stored, keyed by workflow
// instance id; pattern catalogs are never written and are fetched again on
// restore. The schema is versioned; a mismatched database must be reset with
// `signalgen session reset --all` or deleted.
package sessionstore
