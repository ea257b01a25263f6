// Package solver splits people into teams of at most three by randomized
// local search over whole assignments, scoring each team by the complaints
// its members would raise.
package solver

import (
	"fmt"
	"slices"
)

// NoPreference fills a preference slot without naming anyone.
const NoPreference = "zzz"

// MaxTeamSize is the largest team an assignment may contain.
const MaxTeamSize = 3

type Person struct {
	ID        string
	Preferred []string
	GroupSize int
	Disliked  []string
}

// Group returns the person's preference group without sentinel slots or
// repeated ids, in declaration order.
func (p Person) Group() []string {
	var g []string
	for _, id := range p.Preferred {
		if id == NoPreference || slices.Contains(g, id) {
			continue
		}
		g = append(g, id)
	}
	return g
}

// Store holds the person universe in input order. Records are read-only
// once stored; the only mutable field is the individual cost used to order
// the initial construction.
type Store struct {
	order  []string
	people map[string]*record
}

type record struct {
	Person
	cost int
}

func NewStore(people []Person) (*Store, error) {
	s := &Store{
		order:  make([]string, 0, len(people)),
		people: make(map[string]*record, len(people)),
	}
	for _, p := range people {
		if p.ID == "" || p.ID == NoPreference {
			return nil, fmt.Errorf("%w: id %q", ErrInvalidPerson, p.ID)
		}
		if p.GroupSize < 1 {
			return nil, fmt.Errorf("%w: %s wants group size %d", ErrInvalidPerson, p.ID, p.GroupSize)
		}
		if _, ok := s.people[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePerson, p.ID)
		}
		p.Preferred = slices.Clone(p.Preferred)
		p.Disliked = slices.Clone(p.Disliked)
		s.people[p.ID] = &record{Person: p}
		s.order = append(s.order, p.ID)
	}
	return s, nil
}

func (s *Store) Len() int {
	return len(s.order)
}

// IDs returns person ids in input order.
func (s *Store) IDs() []string {
	return slices.Clone(s.order)
}

func (s *Store) Has(id string) bool {
	_, ok := s.people[id]
	return ok
}

func (s *Store) Person(id string) (Person, bool) {
	r, ok := s.people[id]
	if !ok {
		return Person{}, false
	}
	p := r.Person
	p.Preferred = slices.Clone(p.Preferred)
	p.Disliked = slices.Clone(p.Disliked)
	return p, true
}

// IndividualCost reports the cost last computed for id by BuildInitialState.
func (s *Store) IndividualCost(id string) int {
	if r, ok := s.people[id]; ok {
		return r.cost
	}
	return 0
}
