package draw

import (
	"fmt"
	"strings"
)

// Pair is a directed giver → receiver edge. It is used both for the edges of a
// solution and for forbidden assignments (exclusions).
type Pair struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Reversed returns the pair with giver and receiver swapped.
func (p Pair) Reversed() Pair {
	return Pair{From: p.To, To: p.From}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s→%s", p.From, p.To)
}

// Cycle is an ordered list of edges. A complete cycle visits every participant
// exactly once as giver and once as receiver, and the receiver of the last edge
// is the giver of the first.
type Cycle []Pair

// Receiver returns the receiver assigned to giver.
func (c Cycle) Receiver(giver string) (string, bool) {
	for _, p := range c {
		if p.From == giver {
			return p.To, true
		}
	}
	return "", false
}

// Givers returns the givers in cycle order.
func (c Cycle) Givers() []string {
	givers := make([]string, 0, len(c))
	for _, p := range c {
		givers = append(givers, p.From)
	}
	return givers
}

func (c Cycle) String() string {
	parts := make([]string, 0, len(c))
	for _, p := range c {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}

// Validate checks that c is a single closed cycle over exactly the given
// participants and that none of its edges is excluded.
func (c Cycle) Validate(participants []string, exclusions []Pair) error {
	if len(c) != len(participants) {
		return fmt.Errorf("cycle has %d edges, expected %d", len(c), len(participants))
	}

	known := make(map[string]bool, len(participants))
	for _, name := range participants {
		known[name] = true
	}
	forbidden := make(map[Pair]bool, len(exclusions))
	for _, p := range exclusions {
		forbidden[p] = true
	}

	gives := make(map[string]bool, len(c))
	receives := make(map[string]bool, len(c))
	for i, p := range c {
		if !known[p.From] || !known[p.To] {
			return fmt.Errorf("edge %s references an unknown participant", p)
		}
		if forbidden[p] {
			return fmt.Errorf("edge %s is excluded", p)
		}
		if gives[p.From] {
			return fmt.Errorf("'%s' gives more than once", p.From)
		}
		if receives[p.To] {
			return fmt.Errorf("'%s' receives more than once", p.To)
		}
		gives[p.From] = true
		receives[p.To] = true

		// Edges must chain: each receiver gives next, the last closes on the first
		next := c[(i+1)%len(c)]
		if p.To != next.From {
			return fmt.Errorf("edge %s is not followed by an edge from '%s'", p, p.To)
		}
	}

	return nil
}
