// Package serverrun wires the runtime and HTTP server for `flume server
// start` and blocks until shutdown.
package serverrun
