package versionscheme

import "github.com/pkg/errors"

var (
	ErrInvalidCharacter = errors.New("invalid character")
	ErrEmptyScheme      = errors.New("empty version scheme")
	ErrNoMatchingTags   = errors.New("no tags match the version scheme")
)

// Fatal reports whether err means that the tag itself cannot be audited.
// Such errors skip the image; other conditions only degrade the result.
func Fatal(err error) bool {
	return errors.Is(err, ErrInvalidCharacter) || errors.Is(err, ErrEmptyScheme)
}
