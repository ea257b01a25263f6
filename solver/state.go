package solver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// GroupSeparator joins team members in rendered groups.
const GroupSeparator = "-"

type team struct {
	id      int
	members []string
}

// Assignment partitions people into teams. The zero value is an empty
// assignment. Values are never modified in place once handed out; moves
// produce deep copies.
type Assignment struct {
	teams  []team
	nextID int
}

// NewAssignment builds an assignment with one team per group, in order.
// Empty groups are skipped.
func NewAssignment(groups [][]string) Assignment {
	var a Assignment
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		a.addTeam(slices.Clone(g))
	}
	return a
}

func (a *Assignment) addTeam(members []string) {
	a.teams = append(a.teams, team{id: a.nextID, members: members})
	a.nextID++
}

func (a Assignment) Clone() Assignment {
	c := Assignment{
		teams:  make([]team, len(a.teams)),
		nextID: a.nextID,
	}
	for i, t := range a.teams {
		c.teams[i] = team{id: t.id, members: slices.Clone(t.members)}
	}
	return c
}

func (a Assignment) Len() int {
	return len(a.teams)
}

// Team returns a copy of the members of team i.
func (a Assignment) Team(i int) []string {
	return slices.Clone(a.teams[i].members)
}

// TeamOf returns the index of the team holding id, or -1.
func (a Assignment) TeamOf(id string) int {
	for i, t := range a.teams {
		if slices.Contains(t.members, id) {
			return i
		}
	}
	return -1
}

// Groups renders each team as its members joined by GroupSeparator, in
// team order.
func (a Assignment) Groups() []string {
	out := make([]string, len(a.teams))
	for i, t := range a.teams {
		out[i] = strings.Join(t.members, GroupSeparator)
	}
	return out
}

// Key is a canonical rendering of the partition: member order and team
// order do not affect it.
func (a Assignment) Key() string {
	gs := make([][]string, 0, len(a.teams))
	for _, t := range a.teams {
		m := slices.Clone(t.members)
		slices.Sort(m)
		gs = append(gs, m)
	}
	slices.SortFunc(gs, func(x, y []string) int { return slices.Compare(x, y) })
	var buf strings.Builder
	for _, g := range gs {
		for i, m := range g {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(m)
		}
		buf.WriteByte(';')
	}
	return buf.String()
}

func (a Assignment) Fingerprint() uint64 {
	return xxh3.HashString(a.Key())
}

// Validate checks that a places every person of store in exactly one
// non-empty team of at most MaxTeamSize members, and nobody else.
func (a Assignment) Validate(store *Store) error {
	seen := make(map[string]int, store.Len())
	for i, t := range a.teams {
		if len(t.members) == 0 {
			return fmt.Errorf("%w: team %d", ErrEmptyTeam, i)
		}
		if len(t.members) > MaxTeamSize {
			return fmt.Errorf("%w: team %d has %d members", ErrTeamTooLarge, i, len(t.members))
		}
		for _, m := range t.members {
			if !store.Has(m) {
				return fmt.Errorf("%w: unknown person %s in team %d", ErrNotPartition, m, i)
			}
			if j, ok := seen[m]; ok {
				return fmt.Errorf("%w: %s in teams %d and %d", ErrNotPartition, m, j, i)
			}
			seen[m] = i
		}
	}
	for _, id := range store.order {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: %s not assigned", ErrNotPartition, id)
		}
	}
	return nil
}
