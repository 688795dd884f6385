package versionscheme

import (
	"fmt"
	"strings"
)

// Kind is a character class of a version tag.
type Kind uint8

const (
	KindLetter Kind = iota + 1
	KindDigit
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindLetter:
		return "letter"
	case KindDigit:
		return "digit"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Token is a maximal run of characters of the same kind.
type Token struct {
	Kind Kind
	Text string
}

// Scheme is the shape of a version tag: its tokens in order.
// Two adjacent tokens never share the same kind.
type Scheme []Token

// String renders the skeleton of the scheme, e.g. "D.D-L(alpine)".
func (s Scheme) String() string {
	var b strings.Builder
	for _, t := range s {
		switch t.Kind {
		case KindDigit:
			b.WriteByte('D')
		case KindLetter:
			b.WriteString("L(")
			b.WriteString(t.Text)
			b.WriteByte(')')
		default:
			b.WriteString(t.Text)
		}
	}

	return b.String()
}

// Equal reports whether both schemes consist of the same tokens.
func (s Scheme) Equal(other Scheme) bool {
	if len(s) != len(other) {
		return false
	}

	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}

func kindOf(c byte) (Kind, bool) {
	switch {
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return KindLetter, true
	case c >= '0' && c <= '9':
		return KindDigit, true
	case c == '-' || c == '.':
		return KindSeparator, true
	default:
		return 0, false
	}
}

// Tokenize splits a version tag into runs of letters, digits and separators.
// Only ASCII letters, ASCII digits, '-' and '.' are accepted.
//
// An empty input produces an empty scheme without an error;
// such a scheme cannot be turned into a matcher.
func Tokenize(raw string) (Scheme, error) {
	var scheme Scheme

	start := 0
	var prev Kind
	for i := 0; i < len(raw); i++ {
		kind, ok := kindOf(raw[i])
		if !ok {
			return nil, &InvalidCharacterError{Char: invalidRune(raw, i), Pos: i}
		}

		if i > 0 && kind != prev {
			scheme = append(scheme, Token{Kind: prev, Text: raw[start:i]})
			start = i
		}

		prev = kind
	}

	if len(raw) > 0 {
		scheme = append(scheme, Token{Kind: prev, Text: raw[start:]})
	}

	return scheme, nil
}

// invalidRune decodes the rune starting at byte i so that errors show
// the whole character instead of a single UTF-8 byte.
func invalidRune(s string, i int) rune {
	for _, r := range s[i:] {
		return r
	}

	return rune(s[i])
}

// InvalidCharacterError is returned by Tokenize for a character that is
// neither an ASCII letter, an ASCII digit nor a supported separator.
type InvalidCharacterError struct {
	Char rune
	Pos  int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at position %d", e.Char, e.Pos)
}

func (e *InvalidCharacterError) Is(target error) bool {
	return target == ErrInvalidCharacter
}
