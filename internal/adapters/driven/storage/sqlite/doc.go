// Package sqlite provides the SQLite-backed run log and scheduler state.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two driven ports
// through a single database connection:
//
//   - RunLog: Append-only refresh events plus the last-known-good brief
//   - TaskStore: Scheduled briefing timetable
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <data_dir>/flightdeck.db, by default
// ~/.flightdeck/data/flightdeck.db.
//
// # Atomicity
//
// A refresh event and its brief are written in one transaction, so readers
// never see an event without the brief it produced or the reverse.
package sqlite
