// Package crypto holds the process-wide cryptographic setup used by ohttpc.
//
// Contents
//
//   - One-time initialization that probes the entropy source and hands it to
//     callers explicitly (Init)
//   - Short key-configuration fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Nothing in the dispatch path reads package state. Init returns the
// io.Reader that encapsulation draws from, and callers pass it on.
package crypto
