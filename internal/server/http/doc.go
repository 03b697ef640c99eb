// Package httpserver exposes the stream service over a JSON HTTP API:
// health, namespace creation, and the stream add/range/len/trim/delete/
// info/setid operations. Field bytes travel as JSON strings.
package httpserver
