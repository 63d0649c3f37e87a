// Package relay provides the HTTP transport that carries encapsulated
// requests to an oblivious relay or gateway.
//
// The relay only ever sees ciphertext: each call posts one encapsulated
// request with content type message/ohttp-req and returns the raw response
// body. The client never retries; retry policy belongs to the caller.
//
// Supported options include:
//   - An extra PEM trust root on top of the system pool.
//   - A per-call timeout.
//   - HTTP/2 on the TLS transport, or HTTP/3 over QUIC.
//
// Non-2xx statuses are returned as *StatusError values with the URL and
// status text to aid diagnostics.
package relay
