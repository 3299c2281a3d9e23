// Package main hosts the signalgen CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the generation workflow from a
// terminal: health checks, catalog listing, one-shot generation, artifact
// downloads, persisted session inspection, an interactive wizard, and
// configuration scaffolding. It centralizes configuration resolution,
// logger setup, and client construction so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: workflow rules live in internal/workflow, remote
// calls in internal/signalapi, and file handling in internal/download.
package main
