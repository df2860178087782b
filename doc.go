// Package hitrace models trace captures produced by ftrace-style trace
// markers, and matches the spans they describe.
//
// A capture is an ordered sequence of [Trace] records, each tagged with a
// process ID, a CPU, a timestamp, and a [Marker] describing the kind of
// event: the begin or end of a synchronous section, the start or finish of
// an asynchronous one, or a point event with no duration.
//
// The core operation is [FindAllSpans], which pairs every begin record for
// a named function with the end record that closes it, accounting for
// nested sections in between. Matching is scoped to the (pid, cpu) pair of
// the begin record, so records from other processes or processors never
// affect the result.
//
// Parsing of raw capture text lives in package htparse, and aggregation of
// matched spans across benchmark runs in package htstats.
package hitrace
