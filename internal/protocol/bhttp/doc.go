// Package bhttp implements the request side of Binary HTTP messages
// (RFC 9292) as used inside Oblivious HTTP.
//
// # Contents
//
//   - Request, the structured form shared by the textual and binary readers
//   - ReadHTTP, which parses an HTTP/1.x request from text
//   - ReadBinary, which parses known-length and indefinite-length framing
//   - Request.Encode, which produces either framing
//
// # Notes
//
// Field names are lower-cased and fields are kept sorted by name so that the
// known-length encoding of a request is byte-for-byte reproducible. Integers
// use the QUIC variable-length encoding.
//
// Only requests are supported; response framing indicators are rejected.
package bhttp
