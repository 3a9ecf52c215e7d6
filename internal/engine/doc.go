// Package engine implements the rally-scoring match state machine.
//
// Every function here is pure: it takes a Match (or MatchState) value and
// returns a new value. Nothing is mutated in place, nothing blocks and
// nothing returns an error. Transitions that are not allowed in the current
// state are rejected no-ops, reported through Outcome.Accepted.
//
// SCORING RULES:
//
// A match is best of three sets. A set is won by the side that reaches the
// target score with a lead of at least WinBy, or by the side that reaches
// the hard cap exactly. The point winner always serves next. When a side
// wins its second set the match is finished: the final set's scores stay
// visible and no further set is started.
//
// HISTORY:
//
// Dispatch pushes a snapshot of the pre-event state before every accepted
// point or retraction. Undo pops the most recent snapshot. Reset and a rule
// change clear the history.
//
// ORDERING:
//
// The engine itself has no notion of time. Callers stamp events with a
// logical sequence number from Clock so that journals replay in the same
// order they were written.
package engine
