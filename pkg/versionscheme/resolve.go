package versionscheme

import (
	"time"
)

// Tag is a registry tag of an image.
type Tag struct {
	Name        string    `json:"name" yaml:"name"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// Result is the outcome of resolving the latest tag for a pinned one.
type Result struct {
	// Current is the pinned tag, or an empty string when the pin is not
	// among the tags that share its shape.
	Current string

	// Latest is the newest tag with the same shape, nil when there is none.
	Latest *Tag

	// Candidates are the tags with the same shape, newest first.
	Candidates []Tag
}

func (r Result) CurrentFound() bool {
	return r.Current != ""
}

// UpToDate reports whether no tag of the same shape is newer than the pin.
func (r Result) UpToDate() bool {
	if !r.CurrentFound() || r.Latest == nil {
		return false
	}

	return r.Latest.Name == r.Current || Compare(r.Latest.Name, r.Current) == 0
}

// Newer returns the number of candidates that are strictly newer than the pin.
func (r Result) Newer() int {
	if !r.CurrentFound() {
		return 0
	}

	cur := ExtractNumbers(r.Current)
	count := 0
	for _, c := range r.Candidates {
		if compareNumbers(ExtractNumbers(c.Name), cur) < 0 {
			count++
		}
	}

	return count
}

// FilterByShape keeps the tags whose names match m, preserving their order.
func FilterByShape(tags []Tag, m *Matcher) []Tag {
	if m == nil {
		return nil
	}

	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if m.Match(t.Name) {
			out = append(out, t)
		}
	}

	return out
}

// Resolve finds the newest tag sharing the shape of current.
//
// Tokenization and matcher errors are returned as is. When no tag
// matches, an empty result is returned together with ErrNoMatchingTags.
func Resolve(current string, tags []Tag) (Result, error) {
	scheme, err := Tokenize(current)
	if err != nil {
		return Result{}, err
	}

	m, err := BuildMatcher(scheme)
	if err != nil {
		return Result{}, err
	}

	candidates := FilterByShape(tags, m)
	if len(candidates) == 0 {
		return Result{}, ErrNoMatchingTags
	}

	SortDescending(candidates)

	res := Result{
		Latest:     &candidates[0],
		Candidates: candidates,
	}

	for _, c := range candidates {
		if c.Name == current {
			res.Current = current
			break
		}
	}

	return res, nil
}
