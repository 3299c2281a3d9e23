// Package textutil provides small string helpers for building safe file names
// from user and service supplied tokens.
package textutil
