package solver_test

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"teams/solver"
)

func collect(t *testing.T, ctx context.Context, s *solver.Store, opts solver.Options) []solver.Snapshot {
	t.Helper()
	return slices.Collect(solver.Solve(ctx, s, opts))
}

func TestSolveOptimalStartEmitsOnce(t *testing.T) {
	snaps := collect(t, context.Background(), abcStore(t), solver.Options{Seed: 5, MaxSteps: 200})
	require.Len(t, snaps, 1)
	require.Equal(t, []string{"A-B", "C"}, snaps[0].AssignedGroups)
	require.Equal(t, 0, snaps[0].TotalCost)
}

func TestSolveImprovesStrictly(t *testing.T) {
	improved := 0
	for seed := int64(1); seed <= 10; seed++ {
		s := randomStore(t, 18, seed)
		snaps := collect(t, context.Background(), s, solver.Options{Seed: seed, MaxSteps: 300})
		require.NotEmpty(t, snaps)

		initial := solver.BuildInitialState(s)
		require.Equal(t, initial.Groups(), snaps[0].AssignedGroups)
		require.Equal(t, initial.Cost(s), snaps[0].TotalCost)

		for i, snap := range snaps {
			a := assignmentOf(snap)
			require.NoError(t, a.Validate(s), "seed %d snapshot %d", seed, i)
			require.Equal(t, a.Cost(s), snap.TotalCost)
			require.GreaterOrEqual(t, snap.TotalCost, 0)
			if i > 0 {
				require.Less(t, snap.TotalCost, snaps[i-1].TotalCost, "seed %d snapshot %d", seed, i)
			}
		}
		if len(snaps) > 1 {
			improved++
		}
	}
	require.Positive(t, improved)
}

// strandedStore makes the greedy start leave a alone: c and d pair up
// first, which strands a's trio request. The start costs 6; {a,b,e} {c,d}
// {f} costs 3.
func strandedStore(t *testing.T) *solver.Store {
	t.Helper()
	return newStore(t,
		person("a", "a-b-c"),
		person("b", "b-zzz"),
		person("c", "c-d"),
		person("d", "d-c"),
		person("e", "e-zzz-zzz"),
		person("f", "f-zzz-zzz"),
	)
}

func TestSolveImprovesOnGreedy(t *testing.T) {
	s := strandedStore(t)
	require.Equal(t, 6, solver.BuildInitialState(s).Cost(s))

	snaps := collect(t, context.Background(), s, solver.Options{Seed: 3, MaxSteps: 2000})
	require.Greater(t, len(snaps), 1)
	last := snaps[len(snaps)-1]
	require.Less(t, last.TotalCost, snaps[0].TotalCost)
	require.NoError(t, assignmentOf(last).Validate(s))

	var costs []int
	for _, snap := range snaps {
		costs = append(costs, snap.TotalCost)
	}
	require.Equal(t, []int{6, 5, 4, 3}, costs)
}

func TestSolveDeterministic(t *testing.T) {
	s := randomStore(t, 20, 42)
	first := collect(t, context.Background(), s, solver.Options{Seed: 8, MaxSteps: 500})
	second := collect(t, context.Background(), s, solver.Options{Rand: rand.New(rand.NewSource(8)), MaxSteps: 500})
	require.Equal(t, first, second)

	zero := collect(t, context.Background(), s, solver.Options{MaxSteps: 500})
	one := collect(t, context.Background(), s, solver.Options{Seed: 1, MaxSteps: 500})
	require.Equal(t, zero, one)
}

func TestSolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snaps := collect(t, ctx, randomStore(t, 20, 4), solver.Options{})
	require.Len(t, snaps, 1)
}

func TestSolveConsumerStops(t *testing.T) {
	s := randomStore(t, 20, 4)
	n := 0
	for range solver.Solve(context.Background(), s, solver.Options{}) {
		n++
		break
	}
	require.Equal(t, 1, n)
}

func TestSolveDegenerateUniverse(t *testing.T) {
	snaps := collect(t, context.Background(), newStore(t), solver.Options{})
	require.Equal(t, []solver.Snapshot{{AssignedGroups: []string{}, TotalCost: 0}}, snaps)

	solo := newStore(t, solver.Person{ID: "x", Preferred: []string{"x"}, GroupSize: 2})
	snaps = collect(t, context.Background(), solo, solver.Options{})
	require.Equal(t, []solver.Snapshot{{AssignedGroups: []string{"x"}, TotalCost: 1}}, snaps)
}

func TestSolvePathCostStep(t *testing.T) {
	s := randomStore(t, 15, 21)
	snaps := collect(t, context.Background(), s, solver.Options{Seed: 2, MaxSteps: 400, PathCostStep: 1})
	for i := 1; i < len(snaps); i++ {
		require.Less(t, snaps[i].TotalCost, snaps[i-1].TotalCost)
	}
	for _, snap := range snaps {
		require.Equal(t, assignmentOf(snap).Cost(s), snap.TotalCost)
	}
}

func TestBest(t *testing.T) {
	s := randomStore(t, 16, 9)
	opts := solver.Options{Seed: 4, MaxSteps: 300}
	snaps := collect(t, context.Background(), s, opts)
	require.Equal(t, snaps[len(snaps)-1], solver.Best(context.Background(), s, opts))
}

type countingObserver struct {
	rounds, expansions, improvements int
	costs                            []int
}

func (c *countingObserver) RoundStarted() { c.rounds++ }
func (c *countingObserver) Expanded(int)  { c.expansions++ }
func (c *countingObserver) Improved(cost int) {
	c.improvements++
	c.costs = append(c.costs, cost)
}

func TestSolveObserver(t *testing.T) {
	obs := &countingObserver{}
	snaps := collect(t, context.Background(), randomStore(t, 20, 13), solver.Options{Seed: 6, MaxSteps: 250, Observer: obs})

	require.Equal(t, 250, obs.expansions)
	require.GreaterOrEqual(t, obs.rounds, 1)
	require.Equal(t, len(snaps), obs.improvements)
	for i, snap := range snaps {
		require.Equal(t, snap.TotalCost, obs.costs[i])
	}
}
