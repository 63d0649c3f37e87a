// Package source loads the request that ohttpc replicates.
//
// Load reads a file, or standard input when no path is given, and decodes it
// as textual HTTP or as binary HTTP. The result is a Template whose
// canonical known-length encoding is computed once and then shared,
// read-only, by every replica.
package source
