package solver

import (
	"context"
	"iter"
	"math/rand"

	"go.uber.org/zap"
)

type Options struct {
	// Rand drives person selection. When nil, a source seeded with Seed is
	// used.
	Rand *rand.Rand
	Seed int64

	// MaxSteps bounds the number of frontier expansions; zero means no
	// bound.
	MaxSteps int

	// PathCostStep is added to the path cost g after every expansion of a
	// round. The default of zero keeps g at zero, so the frontier orders
	// candidates by their own cost only.
	PathCostStep int

	Logger   *zap.Logger
	Observer Observer
}

// Solve searches for cheaper assignments of the people in store and yields
// a snapshot each time it finds an assignment cheaper than every one
// yielded before. The first snapshot is the initial greedy assignment.
//
// The search has no natural end. It stops when ctx is done, after
// opts.MaxSteps expansions, or when the consumer stops iterating; a store
// of at most one person yields the initial snapshot only.
func Solve(ctx context.Context, store *Store, opts Options) iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		s := newSearch(store, opts)
		s.run(ctx, yield)
	}
}

// Best runs Solve until it ends and returns the last snapshot.
func Best(ctx context.Context, store *Store, opts Options) Snapshot {
	var last Snapshot
	for snap := range Solve(ctx, store, opts) {
		last = snap
	}
	return last
}

type search struct {
	store    *Store
	rng      *rand.Rand
	maxSteps int
	gStep    int
	log      *zap.Logger
	obs      Observer

	steps int
}

func newSearch(store *Store, opts Options) *search {
	s := &search{
		store:    store,
		rng:      opts.Rand,
		maxSteps: opts.MaxSteps,
		gStep:    opts.PathCostStep,
		log:      opts.Logger,
		obs:      opts.Observer,
	}
	if s.rng == nil {
		s.rng = rngFromSeed(opts.Seed)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.obs == nil {
		s.obs = nopObserver{}
	}
	return s
}

func (s *search) exhausted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.maxSteps > 0 && s.steps >= s.maxSteps
}

func (s *search) run(ctx context.Context, yield func(Snapshot) bool) {
	current := BuildInitialState(s.store)
	score := current.Cost(s.store)
	best := score

	s.log.Debug("initial assignment", zap.Int("teams", current.Len()), zap.Int("cost", score))
	s.obs.Improved(best)
	if !yield(newSnapshot(current, best)) {
		return
	}
	if s.store.Len() <= 1 {
		return
	}

	succ := Successors(current, s.store, s.rng)
	for round := 0; ; round++ {
		s.obs.RoundStarted()
		if len(succ) == 0 {
			succ = Successors(current, s.store, s.rng)
		}

		var f frontier
		g := 0
		prev := score + 1
		for score < prev {
			prev = score
			if s.exhausted(ctx) {
				s.log.Debug("search stopped", zap.Int("rounds", round), zap.Int("steps", s.steps), zap.Int("best", best))
				return
			}
			s.steps++

			for _, a := range succ {
				c := a.Cost(s.store)
				f.push(c+g, c, a)
			}
			s.obs.Expanded(len(succ))
			g += s.gStep

			n, ok := f.pop()
			if !ok {
				break
			}
			score = n.score
			current = n.state
			succ = Successors(current, s.store, s.rng)

			if n.cost < best {
				best = n.cost
				s.log.Debug("improved", zap.Int("round", round), zap.Int("step", s.steps), zap.Int("cost", best))
				s.obs.Improved(best)
				if !yield(newSnapshot(current, best)) {
					return
				}
			}
		}
	}
}
