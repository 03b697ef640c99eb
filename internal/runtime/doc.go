// Package runtime wires storage and configuration into a single-node Flume
// instance and hands out stream handles. One Stream handle exists per
// (namespace, name) so writers to the same stream share the serializing
// mutex that keeps generated IDs monotonic.
package runtime
