package solver_test

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"teams/solver"
)

func person(id string, group string, disliked ...string) solver.Person {
	pref := strings.Split(group, "-")
	return solver.Person{ID: id, Preferred: pref, GroupSize: len(pref), Disliked: disliked}
}

func newStore(t *testing.T, people ...solver.Person) *solver.Store {
	t.Helper()
	s, err := solver.NewStore(people)
	require.NoError(t, err)
	return s
}

// randomStore builds n people with groups of one to three members drawn
// from the universe, sentinel slots, and occasional dislikes.
func randomStore(t *testing.T, n int, seed int64) *solver.Store {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "u" + strconv.Itoa(i)
	}
	people := make([]solver.Person, n)
	for i, id := range ids {
		size := 1 + rng.Intn(solver.MaxTeamSize)
		group := []string{id}
		for len(group) < size {
			if rng.Intn(3) == 0 {
				group = append(group, solver.NoPreference)
			} else {
				group = append(group, ids[rng.Intn(n)])
			}
		}
		var disliked []string
		if rng.Intn(3) == 0 {
			disliked = append(disliked, ids[rng.Intn(n)])
		}
		people[i] = solver.Person{ID: id, Preferred: group, GroupSize: size, Disliked: disliked}
	}
	return newStore(t, people...)
}

// abcStore is a universe whose greedy assignment is already optimal.
func abcStore(t *testing.T) *solver.Store {
	t.Helper()
	return newStore(t,
		person("A", "A-B"),
		person("B", "B-A"),
		person("C", "C"),
	)
}

func assignmentOf(snap solver.Snapshot) solver.Assignment {
	groups := make([][]string, len(snap.AssignedGroups))
	for i, g := range snap.AssignedGroups {
		groups[i] = strings.Split(g, solver.GroupSeparator)
	}
	return solver.NewAssignment(groups)
}
