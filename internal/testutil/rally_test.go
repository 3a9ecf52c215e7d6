package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/rally/internal/ir"
)

func TestRallies(t *testing.T) {
	got := Rallies("Aab B")
	assert.Equal(t, []ir.Side{ir.SideA, ir.SideA, ir.SideB, ir.SideB}, got)
}

func TestRallies_PanicsOnUnknownRune(t *testing.T) {
	assert.Panics(t, func() { Rallies("AXB") })
}

func TestPoints(t *testing.T) {
	assert.Len(t, Points(ir.SideB, 21), 21)
	assert.Empty(t, Points(ir.SideA, 0))
	for _, s := range Points(ir.SideB, 3) {
		assert.Equal(t, ir.SideB, s)
	}
}

func TestDeuce(t *testing.T) {
	sides := Deuce(20)
	assert.Len(t, sides, 40)

	a, b := 0, 0
	for _, s := range sides {
		if s == ir.SideA {
			a++
		} else {
			b++
		}
		assert.LessOrEqual(t, a-b, 1)
		assert.LessOrEqual(t, b-a, 1)
	}
	assert.Equal(t, 20, a)
	assert.Equal(t, 20, b)
}

func TestConcat(t *testing.T) {
	got := Concat(Rallies("AB"), nil, Rallies("A"))
	assert.Equal(t, Rallies("ABA"), got)
}

func TestFixedMatchIDGenerator(t *testing.T) {
	gen := NewFixedMatchIDGenerator("m-1")
	assert.Equal(t, "m-1", gen.Generate())
	assert.Equal(t, "m-1", gen.Generate())

	assert.Equal(t, "test-match-default", NewFixedMatchIDGenerator("").Generate())
	assert.Equal(t, "match-deuce", ScenarioMatchID("deuce"))
}
