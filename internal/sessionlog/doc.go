// Package sessionlog persists citation sessions in SQLite.
//
// The log sits outside the engine proper, at the driver's boundary: the
// engine itself performs no I/O. Events append under (session, seq) and
// are never updated; renders upsert so the stored text always matches
// the latest retroactive re-render. Replaying a session's events through
// a fresh driver reproduces the identical history, which is the basis of
// the replay and trace commands.
package sessionlog
