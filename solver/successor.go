package solver

import (
	"math/rand"
	"slices"
)

// PickPerson draws one person uniformly from the whole universe. It
// returns false for an empty store.
func PickPerson(store *Store, rng *rand.Rand) (string, bool) {
	if store.Len() == 0 {
		return "", false
	}
	return store.order[rng.Intn(store.Len())], true
}

// Move relocates id relative to team i of a and returns the result as a
// fresh copy. Targeting id's own team splits id off into a new singleton
// appended last; any other team with room takes id in, and a team left
// empty is dropped. The bool is false when nothing would change: id is not
// seated, team i is full, or id is already alone.
func Move(a Assignment, id string, i int) (Assignment, bool) {
	if i < 0 || i >= len(a.teams) {
		return a, false
	}
	from := a.TeamOf(id)
	if from < 0 {
		return a, false
	}
	if from == i {
		if len(a.teams[from].members) == 1 {
			return a, false
		}
	} else if len(a.teams[i].members) >= MaxTeamSize {
		return a, false
	}

	next := a.Clone()
	src := &next.teams[from]
	src.members = slices.DeleteFunc(src.members, func(m string) bool { return m == id })
	if from == i {
		next.addTeam([]string{id})
		return next, true
	}
	next.teams[i].members = append(next.teams[i].members, id)
	if len(src.members) == 0 {
		next.teams = slices.Delete(next.teams, from, from+1)
	}
	return next, true
}

// Successors picks one person at random and returns every distinct
// assignment reachable by moving that person with respect to one team of
// a. Each successor derives from a directly.
func Successors(a Assignment, store *Store, rng *rand.Rand) []Assignment {
	id, ok := PickPerson(store, rng)
	if !ok {
		return nil
	}
	return movesOf(a, id)
}

func movesOf(a Assignment, id string) []Assignment {
	var out []Assignment
	for i := range a.teams {
		if next, ok := Move(a, id, i); ok {
			out = append(out, next)
		}
	}
	return out
}
