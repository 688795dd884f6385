package versionscheme

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		input    string
		expected Scheme
	}{
		{
			input: "16.04",
			expected: Scheme{
				{Kind: KindDigit, Text: "16"},
				{Kind: KindSeparator, Text: "."},
				{Kind: KindDigit, Text: "04"},
			},
		},
		{
			input: "3.9-alpine",
			expected: Scheme{
				{Kind: KindDigit, Text: "3"},
				{Kind: KindSeparator, Text: "."},
				{Kind: KindDigit, Text: "9"},
				{Kind: KindSeparator, Text: "-"},
				{Kind: KindLetter, Text: "alpine"},
			},
		},
		{
			input: "alpine3.18",
			expected: Scheme{
				{Kind: KindLetter, Text: "alpine"},
				{Kind: KindDigit, Text: "3"},
				{Kind: KindSeparator, Text: "."},
				{Kind: KindDigit, Text: "18"},
			},
		},
		{
			input: "1.2--rc.1",
			expected: Scheme{
				{Kind: KindDigit, Text: "1"},
				{Kind: KindSeparator, Text: "."},
				{Kind: KindDigit, Text: "2"},
				{Kind: KindSeparator, Text: "--"},
				{Kind: KindLetter, Text: "rc"},
				{Kind: KindSeparator, Text: "."},
				{Kind: KindDigit, Text: "1"},
			},
		},
		{
			input:    "latest",
			expected: Scheme{{Kind: KindLetter, Text: "latest"}},
		},
		{
			input:    "20231010",
			expected: Scheme{{Kind: KindDigit, Text: "20231010"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			scheme, err := Tokenize(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, scheme)

			for i := 1; i < len(scheme); i++ {
				assert.NotEqual(t, scheme[i-1].Kind, scheme[i].Kind, "adjacent tokens share a kind")
			}
		})
	}
}

func TestTokenize_Empty(t *testing.T) {
	scheme, err := Tokenize("")
	assert.NoError(t, err)
	assert.Empty(t, scheme)
}

func TestTokenize_InvalidCharacter(t *testing.T) {
	cases := []struct {
		input string
		char  rune
		pos   int
	}{
		{input: "1.2_3", char: '_', pos: 3},
		{input: "1.2+build", char: '+', pos: 3},
		{input: "~1", char: '~', pos: 0},
		{input: "1.2 ", char: ' ', pos: 3},
		{input: "1.ü", char: 'ü', pos: 2},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			scheme, err := Tokenize(tc.input)
			assert.Nil(t, scheme)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCharacter))
			assert.True(t, Fatal(err))

			var charErr *InvalidCharacterError
			require.True(t, errors.As(err, &charErr))
			assert.Equal(t, tc.char, charErr.Char)
			assert.Equal(t, tc.pos, charErr.Pos)
		})
	}
}

func TestTokenize_Idempotent(t *testing.T) {
	for _, input := range []string{"16.04", "3.9-alpine", "v1.2.3", "bullseye-20230904-slim"} {
		first, err := Tokenize(input)
		require.NoError(t, err)

		second, err := Tokenize(input)
		require.NoError(t, err)

		assert.True(t, first.Equal(second), input)
	}
}

func TestScheme_String(t *testing.T) {
	scheme, err := Tokenize("3.9-alpine")
	require.NoError(t, err)

	assert.Equal(t, "D.D-L(alpine)", scheme.String())
}
