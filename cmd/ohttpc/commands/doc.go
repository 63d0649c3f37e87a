// Package commands defines the ohttpc CLI.
//
// Usage
//
//	ohttpc [flags] <url> <config>
//
// url is the relay endpoint and config the hex-encoded key configuration
// published by the gateway. The request is read from --input or standard
// input, encoded once as known-length binary HTTP, and sent --requests times
// with at most --concurrency in flight. Each reply is reported as it arrives.
//
// # Configuration
//
// Options are layered, later sources winning: built-in defaults, the TOML
// file named by --settings, OHTTPC_* environment variables (with a .env file
// loaded first when present), and finally flags given on the command line.
package commands
