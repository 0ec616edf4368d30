// Package shallow provides one-level copies of structured values.
//
// The emitter shallow-copies buffer contexts at creation and at each read so
// that callers cannot mutate stored state, and so that data handed to
// callbacks is not shared at the top level. The copy is deliberately one
// level deep: nested mutable structure remains shared.
package shallow
