package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainState = "rally/state/v1"
	DomainEvent = "rally/event/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash computes the content-addressed identity of a match state.
// Two states hash equal iff they are Equal.
func StateHash(s MatchState) (string, error) {
	canonical, err := MarshalCanonical(s.IR())
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// EventID computes the content-addressed ID of a journaled event.
// The ID is stable across replays given the same inputs.
func EventID(matchID string, seq int64, kind string, payload IRObject) (string, error) {
	obj := IRObject{
		"match_id": IRString(matchID),
		"seq":      IRInt(seq),
		"kind":     IRString(kind),
		"payload":  payload,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when the state is known to be valid.
func MustStateHash(s MatchState) string {
	h, err := StateHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
