// Package disambig implements the disambiguation engine.
//
// The engine owns the per-session disambiguation state: a mapping from
// entry id to the level of detail its renders must expose. Decisions are
// global to the session, not local to one citation event - adding a
// citation that collides with an already-rendered entry raises that
// entry's level too, and the driver re-renders everything the change
// touched.
//
// INVARIANT: state is monotonic. Levels only increase within a session,
// so re-renders never flicker back to a less specific form.
//
// Escalation applies the style's declared techniques in order, least
// invasive first, and re-checks distinctness after every step. If every
// declared technique is exhausted and a collision remains, the engine
// falls back to year-suffix letters assigned by first-citation order;
// the fallback always separates the group, so a collision surviving it
// is a programming error, not a runtime condition.
package disambig
