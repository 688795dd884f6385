package versionscheme

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Matcher recognizes tags that share the shape of a scheme.
// It is safe for concurrent use.
type Matcher struct {
	re *regexp.Regexp
}

// BuildMatcher compiles the scheme into an anchored pattern.
// Letters and separators must match literally, every digit run
// accepts one or more digits of any width.
func BuildMatcher(scheme Scheme) (*Matcher, error) {
	if len(scheme) == 0 {
		return nil, ErrEmptyScheme
	}

	var b strings.Builder
	b.WriteByte('^')
	for _, t := range scheme {
		switch t.Kind {
		case KindDigit:
			b.WriteString("[0-9]+")
		case KindLetter, KindSeparator:
			b.WriteString(regexp.QuoteMeta(t.Text))
		default:
			return nil, errors.Errorf("unknown token kind %d", t.Kind)
		}
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errors.Wrap(err, "pattern compilation failed")
	}

	return &Matcher{re: re}, nil
}

// MustBuildMatcher is like BuildMatcher but panics on error.
func MustBuildMatcher(scheme Scheme) *Matcher {
	m, err := BuildMatcher(scheme)
	if err != nil {
		panic(err)
	}

	return m
}

// MatcherFor tokenizes the tag and builds a matcher for its shape.
func MatcherFor(tag string) (*Matcher, error) {
	scheme, err := Tokenize(tag)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to tokenize %q", tag)
	}

	return BuildMatcher(scheme)
}

// Match reports whether the whole name has the shape of the matcher's scheme.
func (m *Matcher) Match(name string) bool {
	return m.re.MatchString(name)
}

// String returns the compiled pattern.
func (m *Matcher) String() string {
	return m.re.String()
}
