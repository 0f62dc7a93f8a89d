// Package cite implements the citation driver: the stateful processor
// that consumes a document's citation events in order and produces
// rendered citations.
//
// The driver is a single-writer sequence processor. Events are consumed
// one at a time in document order; all mutation happens inside Cite, and
// concurrent submission from independent callers is not supported. The
// only mutable state is the citation history and the disambiguation
// engine, both owned exclusively by one Driver.
//
// For each event the driver stamps a logical seq, classifies the event's
// position against the immediately preceding non-empty event (first,
// subsequent, ibid, ibid-with-locator, near-note), renders each cite
// item through the style interpreter, and feeds the disambiguation
// engine. A new citation can collide with entries rendered earlier; the
// engine then raises those entries' levels and the driver re-renders
// their history records retroactively, returning the refreshed renders
// alongside the new citation.
package cite
