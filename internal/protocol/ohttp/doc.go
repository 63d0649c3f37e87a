// Package ohttp implements the client side of Oblivious HTTP request
// encapsulation (RFC 9458).
//
// A key configuration names a key identifier, an HPKE KEM with its public
// key, and the symmetric suites the gateway accepts. Encapsulate parses the
// configuration, picks the first suite supported by circl's HPKE, and seals
// the binary HTTP request under a freshly set up HPKE sender context.
//
// Response decapsulation is not implemented.
package ohttp
