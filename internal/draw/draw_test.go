package draw

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietLogger discards search tracing
func quietLogger() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("P%02d", i)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("rejects fewer than two participants", func(t *testing.T) {
		_, err := New([]string{"Alice"}, nil)
		assert.ErrorIs(t, err, ErrTooFewParticipants)

		_, err = New(nil, nil)
		assert.ErrorIs(t, err, ErrTooFewParticipants)
	})

	t.Run("rejects duplicate participants", func(t *testing.T) {
		_, err := New([]string{"Alice", "Bob", "Alice"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateParticipant)

		var dupErr *DuplicateParticipantError
		require.True(t, errors.As(err, &dupErr))
		assert.Equal(t, "Alice", dupErr.Name)
		assert.Contains(t, err.Error(), "duplicate participant 'Alice'")
	})

	t.Run("accepts exclusions naming unknown participants", func(t *testing.T) {
		d, err := New([]string{"A", "B", "C"}, []Pair{{From: "X", To: "A"}, {From: "A", To: "Y"}}, quietLogger())
		require.NoError(t, err)

		cycle, err := d.Run(5)
		require.NoError(t, err)
		assert.NoError(t, cycle.Validate(d.Participants(), d.Exclusions()))
	})

	t.Run("copies its inputs", func(t *testing.T) {
		participants := []string{"A", "B", "C"}
		exclusions := []Pair{{From: "A", To: "B"}}
		d, err := New(participants, exclusions, quietLogger())
		require.NoError(t, err)

		participants[0] = "Z"
		exclusions[0] = Pair{From: "C", To: "A"}
		assert.Equal(t, []string{"A", "B", "C"}, d.Participants())
		assert.Equal(t, []Pair{{From: "A", To: "B"}}, d.Exclusions())
	})

	t.Run("starts empty", func(t *testing.T) {
		d, err := New([]string{"A", "B"}, nil, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, 0, d.Len())
		assert.Empty(t, d.Solution())
	})
}

func TestRun_ThreeParticipantsNoExclusions(t *testing.T) {
	participants := []string{"A", "B", "C"}
	d, err := New(participants, nil, WithSeed(7), quietLogger())
	require.NoError(t, err)

	cycle, err := d.Run(30)
	require.NoError(t, err)
	assert.Len(t, cycle, 3)
	assert.NoError(t, cycle.Validate(participants, nil))
	assert.Equal(t, 1, d.Attempts())
}

func TestRun_TwoParticipants(t *testing.T) {
	t.Run("unique cycle without exclusions", func(t *testing.T) {
		d, err := New([]string{"A", "B"}, nil, quietLogger())
		require.NoError(t, err)

		cycle, err := d.Run(30)
		require.NoError(t, err)
		require.Len(t, cycle, 2)

		receiverOfA, _ := cycle.Receiver("A")
		receiverOfB, _ := cycle.Receiver("B")
		assert.Equal(t, "B", receiverOfA)
		assert.Equal(t, "A", receiverOfB)
	})

	t.Run("single exclusion makes it infeasible", func(t *testing.T) {
		d, err := New([]string{"A", "B"}, []Pair{{From: "A", To: "B"}}, quietLogger())
		require.NoError(t, err)

		cycle, err := d.Run(30)
		assert.Nil(t, cycle)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSearchExhausted)

		var exhausted *SearchExhaustedError
		require.True(t, errors.As(err, &exhausted))
		assert.Equal(t, 30, exhausted.Attempts)
		assert.Equal(t, 2, exhausted.Participants)
		assert.Equal(t, 1, exhausted.Exclusions)
		assert.Equal(t, 30, d.Attempts())
		assert.Equal(t, 0, d.Len())
	})
}

func TestRun_FourParticipantsWithExclusion(t *testing.T) {
	participants := []string{"A", "B", "C", "D"}
	exclusions := []Pair{{From: "A", To: "B"}}

	for seed := int64(1); seed <= 200; seed++ {
		d, err := New(participants, exclusions, WithSeed(seed), quietLogger())
		require.NoError(t, err)

		cycle, err := d.Run(30)
		require.NoError(t, err, "seed %d", seed)
		require.NoError(t, cycle.Validate(participants, exclusions), "seed %d", seed)

		receiver, ok := cycle.Receiver("A")
		require.True(t, ok)
		assert.Contains(t, []string{"C", "D"}, receiver, "seed %d", seed)
	}
}

func TestRun_Infeasible(t *testing.T) {
	t.Run("participant excluded from every receiver", func(t *testing.T) {
		participants := []string{"A", "B", "C", "D"}
		exclusions := []Pair{
			{From: "A", To: "B"},
			{From: "A", To: "C"},
			{From: "A", To: "D"},
		}
		d, err := New(participants, exclusions, WithSeed(3), quietLogger())
		require.NoError(t, err)

		_, err = d.Run(10)
		assert.ErrorIs(t, err, ErrSearchExhausted)
		assert.Equal(t, 10, d.Attempts())
	})

	t.Run("participant nobody may give to", func(t *testing.T) {
		participants := names(6)
		var exclusions []Pair
		for _, name := range participants[1:] {
			exclusions = append(exclusions, Pair{From: name, To: participants[0]})
		}
		d, err := New(participants, exclusions, quietLogger())
		require.NoError(t, err)

		_, err = d.Run(5)
		assert.ErrorIs(t, err, ErrSearchExhausted)
	})

	t.Run("zero budget never searches", func(t *testing.T) {
		d, err := New([]string{"A", "B", "C"}, nil, quietLogger())
		require.NoError(t, err)

		_, err = d.Run(0)
		assert.ErrorIs(t, err, ErrSearchExhausted)
		assert.Equal(t, 0, d.Attempts())
	})
}

func TestRun_CoverageProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(2026))

	for trial := 0; trial < 100; trial++ {
		n := 2 + rng.Intn(12)
		participants := names(n)

		// Random sparse exclusion set; some trials will be infeasible
		var exclusions []Pair
		for i := 0; i < n; i++ {
			if rng.Intn(3) == 0 {
				exclusions = append(exclusions, Pair{
					From: participants[rng.Intn(n)],
					To:   participants[rng.Intn(n)],
				})
			}
		}

		d, err := New(participants, exclusions, WithSeed(int64(trial)), quietLogger())
		require.NoError(t, err)

		cycle, err := d.Run(30)
		if err != nil {
			assert.ErrorIs(t, err, ErrSearchExhausted)
			continue
		}
		require.NoError(t, cycle.Validate(participants, exclusions), "trial %d: %s", trial, cycle)
	}
}

func TestRun_FeasibleAlwaysFound(t *testing.T) {
	// Everyone is excluded from giving to their two neighbours in list order,
	// which leaves plenty of valid cycles for n=10.
	participants := names(10)
	var exclusions []Pair
	for i, name := range participants {
		exclusions = append(exclusions,
			Pair{From: name, To: participants[(i+1)%len(participants)]},
			Pair{From: name, To: participants[(i+len(participants)-1)%len(participants)]},
		)
	}

	for seed := int64(0); seed < 100; seed++ {
		d, err := New(participants, exclusions, WithSeed(seed), quietLogger())
		require.NoError(t, err)

		cycle, err := d.Run(30)
		require.NoError(t, err, "seed %d", seed)
		require.NoError(t, cycle.Validate(participants, exclusions))
	}
}

func TestRun_Seeded(t *testing.T) {
	participants := names(8)
	exclusions := []Pair{{From: "P00", To: "P01"}, {From: "P03", To: "P02"}}

	run := func(seed int64) Cycle {
		d, err := New(participants, exclusions, WithSeed(seed), quietLogger())
		require.NoError(t, err)
		cycle, err := d.Run(30)
		require.NoError(t, err)
		return cycle
	}

	t.Run("same seed gives the same cycle", func(t *testing.T) {
		if diff := cmp.Diff(run(99), run(99)); diff != "" {
			t.Errorf("cycles differ for the same seed (-first +second):\n%s", diff)
		}
	})

	t.Run("different seeds explore different cycles", func(t *testing.T) {
		seen := make(map[string]bool)
		for seed := int64(1); seed <= 30; seed++ {
			seen[run(seed).String()] = true
		}
		assert.Greater(t, len(seen), 1)
	})

	t.Run("injected source is used", func(t *testing.T) {
		first, err := New(participants, exclusions, WithRand(rand.New(rand.NewSource(5))), quietLogger())
		require.NoError(t, err)
		second, err := New(participants, exclusions, WithSeed(5), quietLogger())
		require.NoError(t, err)

		a, err := first.Run(30)
		require.NoError(t, err)
		b, err := second.Run(30)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff(a, b))
		assert.Equal(t, int64(0), first.Seed())
		assert.Equal(t, int64(5), second.Seed())
	})
}

func TestRun_Reusable(t *testing.T) {
	participants := names(5)
	d, err := New(participants, nil, WithSeed(11), quietLogger())
	require.NoError(t, err)

	first, err := d.Run(30)
	require.NoError(t, err)
	second, err := d.Run(30)
	require.NoError(t, err)

	assert.NoError(t, first.Validate(participants, nil))
	assert.NoError(t, second.Validate(participants, nil))
	assert.Len(t, first, 5, "earlier result must not alias the draw's state")
}

func TestSearchAndReset(t *testing.T) {
	participants := names(6)
	d, err := New(participants, []Pair{{From: "P01", To: "P02"}}, WithSeed(4), quietLogger())
	require.NoError(t, err)

	require.True(t, d.Search())
	assert.Equal(t, len(participants), d.Len())
	assert.NoError(t, d.Solution().Validate(participants, d.Exclusions()))

	// A complete draw stays complete
	assert.True(t, d.Search())
	assert.Equal(t, len(participants), d.Len())

	d.Reset()
	assert.Equal(t, 0, d.Len())
	assert.Len(t, d.availableNames(), len(participants))
}

func TestSearch_FailureLeavesCleanState(t *testing.T) {
	d, err := New([]string{"A", "B"}, []Pair{{From: "B", To: "A"}}, quietLogger())
	require.NoError(t, err)

	assert.False(t, d.Search())
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, []string{"A", "B"}, d.availableNames())

	// Repeated attempts on the same state keep failing cleanly
	assert.False(t, d.Search())
	assert.Equal(t, []string{"A", "B"}, d.availableNames())
}

func TestRollback_OutOfOrderPanics(t *testing.T) {
	d, err := New([]string{"A", "B", "C"}, nil, quietLogger())
	require.NoError(t, err)

	d.add(Pair{From: "A", To: "B"})
	d.add(Pair{From: "B", To: "C"})
	assert.Panics(t, func() { d.rollback(Pair{From: "A", To: "B"}) })
}
