// Package preflight provides readiness checks for the local directories and
// the remote generation service that signalgen depends on.
//
// The CLI "signalgen health" command runs RunAll and renders the results as a
// table. The generate command runs CheckService before building a workflow so
// an unreachable service is reported before any selection is made.
package preflight
