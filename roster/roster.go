// Package roster reads team preference files.
//
// Each non-blank line names one person, their preferred group and the
// people they do not want to work with:
//
//	djcran djcran-vkvats-nthakurd sahmaini
//	vkvats vkvats-zzz _
//
// The group is hyphen separated and normally starts with the person
// themselves; zzz fills a slot without naming anyone, and its length is the
// group size the person asks for. Dislikes are comma separated; _ means
// none.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"teams/solver"
)

// NoDislikes is the dislike field of a person who dislikes nobody.
const NoDislikes = "_"

var ErrMalformedLine = errors.New("malformed roster line")

// separators may not appear in ids: "-" joins rendered groups and ","
// joins members in an assignment key.
const separators = solver.GroupSeparator + ","

func ParseFile(path string) (*solver.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	store, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

func Parse(r io.Reader) (*solver.Store, error) {
	var people []solver.Person
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		p, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		people = append(people, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return solver.NewStore(people)
}

func ParseLine(text string) (solver.Person, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return solver.Person{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedLine, len(fields))
	}

	if strings.ContainsAny(fields[0], separators) {
		return solver.Person{}, fmt.Errorf("%w: id %q contains a separator", ErrMalformedLine, fields[0])
	}

	group := strings.Split(fields[1], solver.GroupSeparator)
	for _, id := range group {
		if id == "" {
			return solver.Person{}, fmt.Errorf("%w: %q", solver.ErrEmptyGroup, fields[1])
		}
		if strings.Contains(id, ",") {
			return solver.Person{}, fmt.Errorf("%w: group member %q contains a separator", ErrMalformedLine, id)
		}
	}

	var disliked []string
	if fields[2] != NoDislikes {
		for _, id := range strings.Split(fields[2], ",") {
			if id != "" {
				disliked = append(disliked, id)
			}
		}
	}

	return solver.Person{
		ID:        fields[0],
		Preferred: group,
		GroupSize: len(group),
		Disliked:  disliked,
	}, nil
}

// Format renders people back into roster lines.
func Format(w io.Writer, people []solver.Person) error {
	for _, p := range people {
		dis := NoDislikes
		if len(p.Disliked) > 0 {
			dis = strings.Join(p.Disliked, ",")
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\n", p.ID, strings.Join(p.Preferred, "-"), dis); err != nil {
			return err
		}
	}
	return nil
}
