package roster_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"teams/roster"
	"teams/solver"
)

const sample = `djcran djcran-vkvats-nthakurd sahmaini
sahmaini sahmaini _

sulagaop sulagaop-xxx-xxx _
fanjun fanjun-xxx nthakurd
nthakurd nthakurd djcran,fanjun
vkvats vkvats-sahmaini _
`

func TestParse(t *testing.T) {
	s, err := roster.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, []string{"djcran", "sahmaini", "sulagaop", "fanjun", "nthakurd", "vkvats"}, s.IDs())

	p, ok := s.Person("djcran")
	require.True(t, ok)
	require.Equal(t, []string{"djcran", "vkvats", "nthakurd"}, p.Preferred)
	require.Equal(t, 3, p.GroupSize)
	require.Equal(t, []string{"sahmaini"}, p.Disliked)

	p, _ = s.Person("sahmaini")
	require.Equal(t, 1, p.GroupSize)
	require.Empty(t, p.Disliked)

	p, _ = s.Person("nthakurd")
	require.Equal(t, []string{"djcran", "fanjun"}, p.Disliked)
}

func TestParseLineSentinel(t *testing.T) {
	p, err := roster.ParseLine("a a-zzz-zzz _")
	require.NoError(t, err)
	require.Equal(t, 3, p.GroupSize)
	require.Equal(t, []string{"a"}, p.Group())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
		msg   string
	}{
		{"missing dislikes", "a a-b _\nb b-a\n", roster.ErrMalformedLine, "line 2"},
		{"extra field", "a a-b _ extra\n", roster.ErrMalformedLine, "line 1"},
		{"empty group member", "a a--b _\n", solver.ErrEmptyGroup, "line 1"},
		{"duplicate person", "a a _\na a-b _\n", solver.ErrDuplicatePerson, "a"},
		{"hyphen in id", "a a _\nb-c b _\n", roster.ErrMalformedLine, "line 2"},
		{"comma in id", "a,b a _\n", roster.ErrMalformedLine, "line 1"},
		{"comma in group member", "a a-b,c _\n", roster.ErrMalformedLine, "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roster.Parse(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseToleratesUnknownIDs(t *testing.T) {
	s, err := roster.Parse(strings.NewReader("a a-ghost nobody\n"))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
}

func TestFormatRoundTrip(t *testing.T) {
	s, err := roster.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var people []solver.Person
	for _, id := range s.IDs() {
		p, _ := s.Person(id)
		people = append(people, p)
	}
	var buf bytes.Buffer
	require.NoError(t, roster.Format(&buf, people))

	again, err := roster.Parse(&buf)
	require.NoError(t, err)
	for _, id := range s.IDs() {
		want, _ := s.Person(id)
		got, ok := again.Person(id)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := roster.ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 6, s.Len())

	_, err = roster.ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("a\n"), 0o644))
	_, err = roster.ParseFile(bad)
	require.ErrorIs(t, err, roster.ErrMalformedLine)
	require.Contains(t, err.Error(), bad)
}
