// Package store persists batch results to disk.
//
// Files are written through a temp file in the target directory and then
// renamed over the destination, so readers never observe a partial write.
package store
