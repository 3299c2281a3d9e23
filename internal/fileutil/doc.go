// Package fileutil writes downloaded artifacts to disk atomically and reports
// their size and SHA-256 digest.
package fileutil
