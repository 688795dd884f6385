package audit

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUpToDate       Status = "up-to-date"
	StatusOutdated       Status = "outdated"
	StatusPinNotFound    Status = "pin-not-found"
	StatusNoMatchingTags Status = "no-matching-tags"
	StatusInvalid        Status = "invalid"
	StatusFailed         Status = "failed"
)

// Statuses lists every status in the order they are presented.
var Statuses = []Status{
	StatusUpToDate,
	StatusOutdated,
	StatusPinNotFound,
	StatusNoMatchingTags,
	StatusInvalid,
	StatusFailed,
}

// Entry is the audit outcome of one base image.
type Entry struct {
	Dockerfile string `json:"dockerfile" yaml:"dockerfile" dynamodbav:"Dockerfile"`
	Line       int    `json:"line" yaml:"line" dynamodbav:"Line"`
	Stage      string `json:"stage,omitempty" yaml:"stage,omitempty" dynamodbav:"Stage,omitempty"`

	Image      string `json:"image" yaml:"image" dynamodbav:"Image"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty" dynamodbav:"Repository,omitempty"`

	// Current is the pinned tag. It stays set even when the pin is not found
	// among the registry tags; Status tells the difference.
	Current     string     `json:"current" yaml:"current" dynamodbav:"Current"`
	Latest      string     `json:"latest,omitempty" yaml:"latest,omitempty" dynamodbav:"Latest,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty" yaml:"last_updated,omitempty" dynamodbav:"LastUpdated,omitempty"`

	// Newer is the number of tags of the same shape that are newer than the pin.
	Newer int `json:"newer,omitempty" yaml:"newer,omitempty" dynamodbav:"Newer,omitempty"`

	Status Status `json:"status" yaml:"status" dynamodbav:"Status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty" dynamodbav:"Error,omitempty"`
}

// Report is the result of one audit run.
type Report struct {
	ID         string    `json:"id" yaml:"id" dynamodbav:"Id"`
	Roots      []string  `json:"roots,omitempty" yaml:"roots,omitempty" dynamodbav:"Roots,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at" dynamodbav:"StartedAt"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at" dynamodbav:"FinishedAt"`
	Entries    []Entry   `json:"entries" yaml:"entries" dynamodbav:"Entries"`
}

func newReport(roots []string) *Report {
	return &Report{
		ID:        uuid.New().String(),
		Roots:     roots,
		StartedAt: time.Now().UTC(),
	}
}

func (r *Report) sortEntries() {
	sort.SliceStable(r.Entries, func(i, j int) bool {
		a, b := r.Entries[i], r.Entries[j]
		if a.Dockerfile != b.Dockerfile {
			return a.Dockerfile < b.Dockerfile
		}

		return a.Line < b.Line
	})
}

// Summary counts entries per status.
func (r *Report) Summary() map[Status]int {
	summary := make(map[Status]int, len(Statuses))
	for _, e := range r.Entries {
		summary[e.Status]++
	}

	return summary
}

// Outdated returns the entries whose pins have newer tags.
func (r *Report) Outdated() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == StatusOutdated {
			out = append(out, e)
		}
	}

	return out
}
