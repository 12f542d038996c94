// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SnapshotFetcher: Fetches raw rows for every source (live or fixture)
//   - Normaliser: Maps one source's raw rows into items
//   - NormaliserRegistry: Selects the normaliser for a source
//   - RunLog: Append-only refresh event log and last-known-good brief
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DeliverySink (fallback): Without it a primary failure is reported as-is.
//   - RunObserver: Metrics export. Without it runs are only logged.
//   - TaskStore: Scheduler state. Without it a restarted scheduler runs immediately.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
