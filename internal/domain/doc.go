// Package domain defines the core data models and contracts shared across
// ohttpc. It holds plain types (key configuration, dispatch plan, outcomes)
// and the interfaces the dispatcher depends on; it has no I/O of its own.
package domain
