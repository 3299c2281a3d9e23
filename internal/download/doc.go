// Package download saves session artifacts to the local download directory.
//
// A download is bound to the GenerationResult captured when it was
// requested: it is refused up front if that result is no longer the one the
// workflow holds, but once started it completes for that session even if a
// newer generation replaces it. Files are named from family, pattern and
// artifact kind, written atomically, and serialised per target file with an
// advisory lock so concurrent processes never interleave writes.
package download
