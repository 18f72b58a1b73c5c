// Package sse provides a minimal, purpose-built incremental decoder for the
// "data: <json>\n" event streams served by the cloud API. It turns an
// arbitrarily chunked byte stream into a sequence of typed events.
//
// Only the data line convention is honored. "event:", "id:" and "retry:"
// fields, comment lines and blank keep-alive lines are discarded. This is a
// deliberate subset of the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse
