// Package session wraps the pure match engine in a stateful scorekeeper.
//
// A Session holds the live match and the rules in force, stamps each event
// with a logical seq, drives the match stopwatch and, when a Recorder is
// configured, journals every event with the resulting state hash.
//
// The stopwatch follows the scoreboard: it starts on the first accepted
// point, stops when the match is decided, and is zeroed by a reset or a
// rule change. Toggle pauses and resumes it by hand.
package session
