package versionscheme

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatcher_EmptyScheme(t *testing.T) {
	m, err := BuildMatcher(nil)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, ErrEmptyScheme))
	assert.True(t, Fatal(err))
}

func TestBuildMatcher_Pattern(t *testing.T) {
	m, err := MatcherFor("3.9-alpine")
	require.NoError(t, err)

	assert.Equal(t, `^[0-9]+\.[0-9]+-alpine$`, m.String())
}

func TestMatcher_MatchesItself(t *testing.T) {
	for _, tag := range []string{"16.04", "3.9-alpine", "alpine3.18", "1.25.1-bookworm", "v2", "20231010", "a.b-c"} {
		m, err := MatcherFor(tag)
		require.NoError(t, err)
		assert.True(t, m.Match(tag), tag)
	}
}

func TestMatcher_Match(t *testing.T) {
	cases := []struct {
		scheme string
		name   string
		match  bool
	}{
		// digit runs are generalized to any width
		{scheme: "16.04", name: "18.04", match: true},
		{scheme: "16.04", name: "160.4", match: true},
		{scheme: "16.04", name: "9.10", match: true},
		{scheme: "3.9-alpine", name: "3.10-alpine", match: true},
		{scheme: "alpine3.18", name: "alpine3.9", match: true},

		// the whole tag must match
		{scheme: "16.04", name: "16.04-slim", match: false},
		{scheme: "16.04", name: "v16.04", match: false},
		{scheme: "3.9-alpine", name: "3.9", match: false},
		{scheme: "3.9-alpine", name: "3.9-alpine3.18", match: false},

		// literals are kept
		{scheme: "16.04", name: "16-04", match: false},
		{scheme: "16.04", name: "16x04", match: false},
		{scheme: "3.9-alpine", name: "3.9-Alpine", match: false},
		{scheme: "3.9-alpine", name: "3.9-alpina", match: false},

		// unrelated tags
		{scheme: "16.04", name: "latest", match: false},
		{scheme: "16.04", name: "edge", match: false},
		{scheme: "16.04", name: "", match: false},
		{scheme: "1.2.3", name: "1.2.3-rc.1", match: false},
	}

	for _, tc := range cases {
		t.Run(tc.scheme+"/"+tc.name, func(t *testing.T) {
			m, err := MatcherFor(tc.scheme)
			require.NoError(t, err)
			assert.Equal(t, tc.match, m.Match(tc.name))
		})
	}
}

func TestMatcher_GeneralizesDigitRuns(t *testing.T) {
	const tag = "1.25.1-bookworm"

	m, err := MatcherFor(tag)
	require.NoError(t, err)

	for _, replacement := range []string{"0", "7", "42", "123456789"} {
		for _, run := range []string{"1", "25"} {
			changed := strings.Replace(tag, run, replacement, 1)
			assert.True(t, m.Match(changed), changed)
		}
	}
}

func TestMatcher_KeepsLiterals(t *testing.T) {
	const tag = "3.9-alpine"

	m, err := MatcherFor(tag)
	require.NoError(t, err)

	for i := 0; i < len(tag); i++ {
		if tag[i] >= '0' && tag[i] <= '9' {
			continue
		}

		for _, c := range []byte{'x', 'A', '-', '.', '0'} {
			if c == tag[i] {
				continue
			}

			changed := tag[:i] + string(c) + tag[i+1:]
			assert.False(t, m.Match(changed), changed)
		}
	}
}

func TestMustBuildMatcher_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustBuildMatcher(Scheme{})
	})
}

func TestMatcherFor_Errors(t *testing.T) {
	_, err := MatcherFor("")
	assert.True(t, errors.Is(err, ErrEmptyScheme))

	_, err = MatcherFor("1_0")
	assert.True(t, errors.Is(err, ErrInvalidCharacter))
}
