package ir

// NOTE: These are journal records, not part of the canonical match state.
// They carry whatever the store needs to list and replay a session.

// MatchRecord is written once per match, before its first event.
type MatchRecord struct {
	ID    string  `json:"id"`
	Seq   int64   `json:"seq"`   // seq of the first event journaled for this match
	Rules RuleSet `json:"rules"` // rules in force when the match started
	NameA string  `json:"name_a"`
	NameB string  `json:"name_b"`
}

// EventRecord is one dispatched event together with its result.
// Rejected events are journaled too, so replay sees exactly what the
// scorekeeper saw.
type EventRecord struct {
	ID        string     `json:"id"` // content-addressed, see EventID
	MatchID   string     `json:"match_id"`
	Seq       int64      `json:"seq"`
	Kind      string     `json:"kind"`
	Payload   IRObject   `json:"payload"`
	Accepted  bool       `json:"accepted"`
	Reason    string     `json:"reason,omitempty"`
	State     MatchState `json:"state"`      // state after the event
	StateHash string     `json:"state_hash"` // StateHash(State)
}
