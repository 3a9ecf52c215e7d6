package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/rally/internal/ir"
)

// Rallies parses a compact point sequence such as "AABAB" into sides.
// Whitespace is ignored so long sequences can be grouped ("AAAAA BBBBB").
// Panics on any other character.
func Rallies(seq string) []ir.Side {
	var sides []ir.Side
	for _, r := range seq {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			continue
		case r == 'A' || r == 'a':
			sides = append(sides, ir.SideA)
		case r == 'B' || r == 'b':
			sides = append(sides, ir.SideB)
		default:
			panic(fmt.Sprintf("testutil.Rallies: unexpected %q in %q", r, seq))
		}
	}
	return sides
}

// Points returns n consecutive rallies won by side.
func Points(side ir.Side, n int) []ir.Side {
	return Rallies(strings.Repeat(string(side), n))
}

// Deuce returns the rallies that bring a set to n-n, alternating sides
// so that neither side ever leads by two.
func Deuce(n int) []ir.Side {
	sides := make([]ir.Side, 0, 2*n)
	for i := 0; i < n; i++ {
		sides = append(sides, ir.SideA, ir.SideB)
	}
	return sides
}

// Concat joins rally sequences.
func Concat(seqs ...[]ir.Side) []ir.Side {
	var out []ir.Side
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}
