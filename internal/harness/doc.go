// Package harness runs scripted match scenarios against a real session.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: deuce_to_22_20
//	description: "A set at 20-20 goes to whoever leads by two"
//	target: 21
//	steps:
//	  - rally: AB
//	    times: 20
//	  - point: A
//	    times: 2
//	    expect: { sets_a: 1, current_set: 2, set_completed: true }
//	  - retract: B
//	    expect: { accepted: false, reason: score_zero }
//	  - undo: true
//	  - reset: true
//	  - rules: 11
//	assertions:
//	  - type: final_state
//	    expect: { score_a: 0, winner: "" }
//	  - type: completed_sets
//	    sets: [{ score_a: 22, score_b: 20, winner: A }]
//	  - type: invariants
//
// Each step names exactly one action: point, retract, rally (a compact
// sequence of points such as "AABAB"), undo, reset or rules (a new target
// score). times repeats the step. expect is checked after the step's last
// event against the outcome and the resulting state.
//
// # Assertion Types
//
//   - final_state: subset match on the final state fields
//   - completed_sets: exact list of completed sets
//   - history_depth: number of undo snapshots at the end
//   - invariants: structural invariants hold for every state in the trace
//   - trace_count: number of trace events, optionally filtered by kind
//     and accepted flag
//   - journal_replay: the session journal replays to identical state hashes
//
// # Deterministic Testing
//
// Every scenario runs in a fresh session with a deterministic clock, a
// fixed match ID (match_id, or "match-<name>") and an in-memory journal,
// so traces are identical across runs and can be compared with golden
// files through RunWithGolden.
package harness
