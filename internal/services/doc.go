// Package services defines shared utilities consumed by the workflow
// controller, the generation API client, and the download orchestrator.
//
// Key responsibilities:
//   - Context helpers that stamp workflow instance IDs, session IDs, step
//     names, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure coming
//     out of a remote call carries one of the error kinds the workflow knows
//     how to surface (network, catalog, generation, artifact, settings).
//   - FailureStatus, which turns those markers into a user-visible status
//     instead of letting remote failures escape uncaught.
//
// Use these helpers when adding new remote calls so error classification
// stays uniform across the client.
package services
