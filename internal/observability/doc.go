// Package observability provides the logger and metrics collectors used by
// ohttpc.
package observability
