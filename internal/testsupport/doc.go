// Package testsupport offers shared fixtures for package tests: temp-dir
// backed configs, the reference pattern catalogs, and an httptest fake of
// the generation service with failure injection hooks.
package testsupport
