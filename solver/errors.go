package solver

import "errors"

var (
	ErrDuplicatePerson = errors.New("duplicate person")
	ErrEmptyGroup      = errors.New("empty preference group")
	ErrInvalidPerson   = errors.New("invalid person")

	ErrNotPartition = errors.New("assignment is not a partition")
	ErrTeamTooLarge = errors.New("team exceeds maximum size")
	ErrEmptyTeam    = errors.New("empty team")
)
