// Package client contains Cobra CLI commands that talk to a running Flume
// server over its HTTP API.
package client
