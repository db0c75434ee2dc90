// Package draw assigns Secret Santa givers to receivers.
//
// A Draw searches for a single directed cycle through every participant that
// avoids a list of forbidden (giver, receiver) pairs. The search is a randomized
// depth-first backtracker: each attempt fixes a random starting giver, extends
// the path forward through shuffled candidates and undoes an edge when the path
// behind it cannot be completed. When an attempt exhausts its search space the
// state is reset and a new attempt starts with fresh randomness, up to a limit.
//
// A Draw is not safe for concurrent use.
package draw

import (
	"fmt"
	"log/slog"
	"math/rand"
)

// Draw is the mutable state of a search.
type Draw struct {
	participants []string
	exclusions   []Pair

	// excluded indexes exclusions; duplicates collapse here
	excluded map[Pair]struct{}

	solution   Cycle
	inSolution map[Pair]struct{}
	available  map[string]bool

	rng      *rand.Rand
	seed     int64
	logger   *slog.Logger
	attempts int
}

// New creates a draw over participants. Exclusions that name unknown
// participants are accepted and never match.
func New(participants []string, exclusions []Pair, opts ...Option) (*Draw, error) {
	if len(participants) < 2 {
		return nil, ErrTooFewParticipants
	}

	seen := make(map[string]bool, len(participants))
	for _, name := range participants {
		if seen[name] {
			return nil, &DuplicateParticipantError{Name: name}
		}
		seen[name] = true
	}

	d := &Draw{
		participants: append([]string(nil), participants...),
		exclusions:   append([]Pair(nil), exclusions...),
		excluded:     make(map[Pair]struct{}, len(exclusions)),
		inSolution:   make(map[Pair]struct{}, len(participants)),
		available:    make(map[string]bool, len(participants)),
		logger:       slog.Default(),
	}
	for _, p := range exclusions {
		d.excluded[p] = struct{}{}
	}

	WithSeed(newSeed())(d)
	for _, opt := range opts {
		opt(d)
	}

	d.Reset()
	return d, nil
}

// Participants returns the participant names in the order given to New.
func (d *Draw) Participants() []string {
	return append([]string(nil), d.participants...)
}

// Exclusions returns the forbidden pairs as given to New.
func (d *Draw) Exclusions() []Pair {
	return append([]Pair(nil), d.exclusions...)
}

// Seed returns the seed of the draw's random source, or 0 when the source was
// injected with WithRand.
func (d *Draw) Seed() int64 {
	return d.seed
}

// Attempts returns how many attempts the last Run made.
func (d *Draw) Attempts() int {
	return d.attempts
}

// Len returns the number of edges in the current solution.
func (d *Draw) Len() int {
	return len(d.solution)
}

// Solution returns a copy of the current solution.
func (d *Draw) Solution() Cycle {
	return append(Cycle(nil), d.solution...)
}

// Reset restores the draw to its initial state: no edges and every
// participant available. The random source is not rewound.
func (d *Draw) Reset() {
	d.solution = d.solution[:0]
	clear(d.inSolution)
	for _, name := range d.participants {
		d.available[name] = true
	}
}

// Run searches up to limit times, resetting between failed attempts, and
// returns the first complete cycle. It returns a *SearchExhaustedError when
// the budget is spent.
func (d *Draw) Run(limit int) (Cycle, error) {
	d.Reset()
	d.attempts = 0

	for d.attempts < limit {
		d.attempts++
		if d.Search() {
			d.logger.Info("draw complete",
				"participants", len(d.participants),
				"attempts", d.attempts)
			return d.Solution(), nil
		}
		d.logger.Debug("attempt exhausted", "attempt", d.attempts)
		d.Reset()
	}

	return nil, &SearchExhaustedError{
		Attempts:     d.attempts,
		Participants: len(d.participants),
		Exclusions:   len(d.exclusions),
	}
}

// Search makes one randomized backtracking attempt from the current state.
// On success the solution holds a complete cycle. On failure the solution is
// empty and every participant is available again.
func (d *Draw) Search() bool {
	if len(d.solution) == len(d.participants) {
		return true
	}

	start := d.pickStart()
	d.logger.Debug("starting attempt", "start", start)
	if d.backtrack(start) {
		return true
	}

	d.available[start] = true
	return false
}

// backtrack extends the path from giver. It returns true once the closing edge
// has been added; on false every edge it added has been rolled back.
func (d *Draw) backtrack(giver string) bool {
	// N-1 edges: every participant except the start has received
	if len(d.solution) == len(d.participants)-1 {
		closing := Pair{From: giver, To: d.solution[0].From}
		if !d.valid(closing) {
			return false
		}
		d.push(closing)
		return true
	}

	for _, receiver := range d.choices() {
		candidate := Pair{From: giver, To: receiver}
		if !d.valid(candidate) {
			continue
		}

		d.add(candidate)
		d.logger.Debug("candidate added", "edge", candidate, "depth", len(d.solution))
		if d.backtrack(receiver) {
			return true
		}
		d.rollback(candidate)
		d.logger.Debug("candidate rolled back", "edge", candidate)
	}

	return false
}

// pickStart chooses the giver that opens the cycle and removes it from the
// available receivers; it only becomes a receiver through the closing edge.
func (d *Draw) pickStart() string {
	names := d.availableNames()
	start := names[d.rng.Intn(len(names))]
	delete(d.available, start)
	return start
}

// choices returns the available receivers in a fresh random order.
func (d *Draw) choices() []string {
	names := d.availableNames()
	d.shuffle(names)
	return names
}

// availableNames lists available participants in participant order so that a
// seeded source always sees the same input.
func (d *Draw) availableNames() []string {
	names := make([]string, 0, len(d.available))
	for _, name := range d.participants {
		if d.available[name] {
			names = append(names, name)
		}
	}
	return names
}

// valid reports whether p is neither excluded nor already part of the solution.
// The second check cannot fail while available is consistent.
func (d *Draw) valid(p Pair) bool {
	if _, ok := d.excluded[p]; ok {
		return false
	}
	_, ok := d.inSolution[p]
	return !ok
}

func (d *Draw) add(p Pair) {
	d.push(p)
	delete(d.available, p.To)
}

func (d *Draw) push(p Pair) {
	d.solution = append(d.solution, p)
	d.inSolution[p] = struct{}{}
}

// rollback undoes add. Only the last edge can be rolled back.
func (d *Draw) rollback(p Pair) {
	last := len(d.solution) - 1
	if last < 0 || d.solution[last] != p {
		panic(fmt.Sprintf("draw: rollback of %s out of order", p))
	}
	d.solution = d.solution[:last]
	delete(d.inSolution, p)
	d.available[p.To] = true
}
