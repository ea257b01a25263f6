package solver

import "slices"

const (
	missingPreferenceCost = 1
	wrongSizeCost         = 1
	dislikedTeammateCost  = 2
)

// TeamCost counts the complaints the members of team would raise: one per
// preferred teammate placed elsewhere, one if the team is not the size the
// member asked for, and two per disliked teammate sharing the team. Members
// and referenced ids unknown to the store never add cost.
func TeamCost(team []string, store *Store) int {
	cost := 0
	for _, id := range team {
		r, ok := store.people[id]
		if !ok {
			continue
		}
		cost += memberCost(&r.Person, team)
	}
	return cost
}

func memberCost(p *Person, team []string) int {
	cost := 0
	for _, pref := range p.Preferred {
		if pref != NoPreference && !slices.Contains(team, pref) {
			cost += missingPreferenceCost
		}
	}
	if len(team) != p.GroupSize {
		cost += wrongSizeCost
	}
	for _, d := range p.Disliked {
		if slices.Contains(team, d) {
			cost += dislikedTeammateCost
		}
	}
	return cost
}

func (a Assignment) Cost(store *Store) int {
	total := 0
	for _, t := range a.teams {
		total += TeamCost(t.members, store)
	}
	return total
}
