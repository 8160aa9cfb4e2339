// Package textutil sanitizes user-visible names into filesystem-safe
// filenames.
//
// The primary use cases are:
//   - Deriving download filenames that embed a bracketed video id marker
//   - Deriving playlist slug filenames for the library's backing files
//
// Sanitization keeps alphanumerics, a handful of safe punctuation
// characters, and multi-byte UTF-8 sequences, so non-ASCII titles stay
// readable on disk.
package textutil
