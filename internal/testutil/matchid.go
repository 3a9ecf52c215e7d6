package testutil

import "fmt"

// FixedMatchIDGenerator returns the same match ID on every call.
//
// Scenarios that reset or change rules mid-run still journal under one
// stable ID, which keeps golden traces independent of how many matches a
// scenario starts. Use engine.FixedGenerator when each match needs its own ID.
type FixedMatchIDGenerator struct {
	id string
}

// NewFixedMatchIDGenerator returns a generator for id.
// An empty id becomes "test-match-default".
func NewFixedMatchIDGenerator(id string) *FixedMatchIDGenerator {
	if id == "" {
		id = "test-match-default"
	}
	return &FixedMatchIDGenerator{id: id}
}

func (g *FixedMatchIDGenerator) Generate() string {
	return g.id
}

// ScenarioMatchID derives the match ID the harness uses for a scenario.
func ScenarioMatchID(name string) string {
	return fmt.Sprintf("match-%s", name)
}
