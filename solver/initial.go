package solver

import (
	"slices"
)

// BuildInitialState greedily seats people with their declared group,
// cheapest groups first, then packs whoever is left into teams of
// MaxTeamSize in input order. It records each person's individual cost in
// the store as a side effect.
func BuildInitialState(store *Store) Assignment {
	for _, id := range store.order {
		r := store.people[id]
		r.cost = TeamCost(r.Group(), store)
	}

	order := slices.Clone(store.order)
	slices.SortStableFunc(order, func(x, y string) int {
		return store.people[x].cost - store.people[y].cost
	})

	var a Assignment
	assigned := make(map[string]bool, len(order))
	for _, id := range order {
		g := store.people[id].Group()
		if len(g) == 0 || len(g) > MaxTeamSize {
			continue
		}
		free := true
		for _, m := range g {
			if !store.Has(m) || assigned[m] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for _, m := range g {
			assigned[m] = true
		}
		a.addTeam(g)
	}

	var rest []string
	for _, id := range store.order {
		if !assigned[id] {
			rest = append(rest, id)
		}
	}
	for chunk := range slices.Chunk(rest, MaxTeamSize) {
		a.addTeam(slices.Clone(chunk))
	}
	return a
}
