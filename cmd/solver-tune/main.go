package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"teams/roster"
	"teams/solver"
)

type runResult struct {
	cost     int
	solution uint64
	emitted  int
	elapsed  time.Duration
}

func printStats(label string, results []runResult, runs int) {
	costs := map[int]int{}
	solutionSets := map[uint64]int{}
	var totalTime time.Duration
	var totalEmitted int

	for _, r := range results {
		totalTime += r.elapsed
		costs[r.cost]++
		solutionSets[r.solution]++
		totalEmitted += r.emitted
	}

	fmt.Printf("--- %s ---\n", label)
	fmt.Printf("  avg time: %v\n", totalTime/time.Duration(runs))
	fmt.Printf("  avg improvements per run: %.1f\n", float64(totalEmitted)/float64(runs))

	type costCount struct {
		cost  int
		count int
	}
	var costList []costCount
	for c, n := range costs {
		costList = append(costList, costCount{c, n})
	}
	sort.Slice(costList, func(i, j int) bool { return costList[i].cost < costList[j].cost })

	fmt.Printf("  cost distribution:\n")
	for _, cc := range costList {
		fmt.Printf("    cost %d: %d/%d runs (%.0f%%)\n", cc.cost, cc.count, runs, float64(cc.count)/float64(runs)*100)
	}

	fmt.Printf("  unique final solutions: %d\n", len(solutionSets))
	stableCount := 0
	for _, n := range solutionSets {
		if n == runs {
			stableCount++
		}
	}
	fmt.Printf("  solutions found in all runs: %d\n", stableCount)
	fmt.Println()
}

func main() {
	input := flag.String("input", "", "roster file to tune on")
	gen := flag.Int("gen", 0, "generate a random roster of this many people instead of reading -input")
	genSeed := flag.Int64("gen-seed", 1, "seed for -gen")
	write := flag.String("write", "", "save the generated roster to this file")
	runs := flag.Int("runs", 20, "number of solver runs per parameter set")
	steps := flag.String("steps", "1000", "comma-separated expansion limits")
	gSteps := flag.String("gstep", "0", "comma-separated path cost steps")
	timeout := flag.Duration("timeout", 0, "wall clock limit per run (0 for none)")
	flag.Parse()

	var store *solver.Store
	var err error
	switch {
	case *gen > 0:
		people := generate(*gen, rand.New(rand.NewSource(*genSeed)))
		if *write != "" {
			if err := writeRoster(*write, people); err != nil {
				fmt.Fprintf(os.Stderr, "writing roster: %v\n", err)
				os.Exit(1)
			}
		}
		store, err = solver.NewStore(people)
	case *input != "":
		store, err = roster.ParseFile(*input)
	default:
		fmt.Fprintf(os.Stderr, "one of -input or -gen is required\n")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading roster: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("People: %d\n", store.Len())
	fmt.Printf("Runs per config: %d\n\n", *runs)

	for _, ns := range parseIntList(*steps) {
		for _, gs := range parseIntList(*gSteps) {
			var results []runResult
			for run := range *runs {
				results = append(results, tuneRun(store, ns, gs, int64(run*31337), *timeout))
			}
			label := fmt.Sprintf("steps=%d gstep=%d timeout=%v", ns, gs, *timeout)
			printStats(label, results, *runs)
		}
	}
}

func tuneRun(store *solver.Store, steps, gStep int, seed int64, timeout time.Duration) runResult {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := solver.Options{
		Rand:         rand.New(rand.NewSource(seed)),
		MaxSteps:     steps,
		PathCostStep: gStep,
	}
	var r runResult
	var last solver.Snapshot
	start := time.Now()
	for snap := range solver.Solve(ctx, store, opts) {
		last = snap
		r.emitted++
	}
	r.elapsed = time.Since(start)
	r.cost = last.TotalCost
	r.solution = solutionKey(last)
	return r
}

func solutionKey(snap solver.Snapshot) uint64 {
	groups := make([][]string, len(snap.AssignedGroups))
	for i, g := range snap.AssignedGroups {
		groups[i] = strings.Split(g, solver.GroupSeparator)
	}
	return solver.NewAssignment(groups).Fingerprint()
}

// generate builds n people with random groups of one to three and the
// occasional dislike.
func generate(n int, rng *rand.Rand) []solver.Person {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "p" + strconv.Itoa(i)
	}
	people := make([]solver.Person, n)
	for i, id := range ids {
		size := 1 + rng.Intn(solver.MaxTeamSize)
		group := []string{id}
		for len(group) < size {
			if rng.Intn(3) == 0 {
				group = append(group, solver.NoPreference)
				continue
			}
			group = append(group, ids[rng.Intn(n)])
		}
		var disliked []string
		if rng.Intn(4) == 0 {
			disliked = append(disliked, ids[rng.Intn(n)])
		}
		people[i] = solver.Person{ID: id, Preferred: group, GroupSize: size, Disliked: disliked}
	}
	return people
}

func writeRoster(path string, people []solver.Person) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := roster.Format(f, people); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseIntList(s string) []int {
	parts := strings.Split(s, ",")
	var result []int
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			result = append(result, v)
		}
	}
	return result
}
