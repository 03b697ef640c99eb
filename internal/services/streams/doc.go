// Package streamsvc is the command-facing stream service. It resolves the
// textual argument conventions (full "*" wildcard, "-"/"+" range shorthands,
// "(" exclusive bounds), enforces namespace and field limits, and applies
// optional CEL filters to range results before handing entries back to the
// transport.
package streamsvc
