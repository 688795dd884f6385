package audit

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lodthe/fromcheck/internal/dockerfile"
	"github.com/lodthe/fromcheck/pkg/versionscheme"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagSourceMock struct {
	mu       sync.Mutex
	tags     map[string][]string
	requests map[string]int
}

func (m *tagSourceMock) Get(_ context.Context, repository string) ([]versionscheme.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.requests == nil {
		m.requests = make(map[string]int)
	}
	m.requests[repository]++

	names, ok := m.tags[repository]
	if !ok {
		return nil, errors.New("registry is unavailable")
	}

	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tags := make([]versionscheme.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, versionscheme.Tag{Name: n, LastUpdated: updated})
	}

	return tags, nil
}

func writeDockerfile(t *testing.T, dir, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func newSource() *tagSourceMock {
	return &tagSourceMock{
		tags: map[string][]string{
			"library/ubuntu": {"16.04", "18.04", "latest", "20.04", "edge"},
			"library/python": {"3.9-alpine", "3.10-alpine", "3.9", "edge"},
			"library/alpine": {"3.19", "3.18", "latest"},
			"library/redis":  {"8.9", "8.10"},
			"library/node":   {"latest", "lts"},
		},
	}
}

func TestAuditor_Run(t *testing.T) {
	root := t.TempDir()

	ubuntu := writeDockerfile(t, filepath.Join(root, "ubuntu"), "FROM ubuntu:16.04\n")
	python := writeDockerfile(t, filepath.Join(root, "python"), "FROM python:3.9-alpine AS build\nFROM alpine:3.19\n")
	redis := writeDockerfile(t, filepath.Join(root, "redis"), "FROM redis:9.1\n")
	node := writeDockerfile(t, filepath.Join(root, "node"), "FROM node:20.11\n")
	broken := writeDockerfile(t, filepath.Join(root, "broken"), "FROM postgres:16.1\nFROM ubuntu:16.04_1\nFROM ubuntu\n")
	empty := writeDockerfile(t, filepath.Join(root, "empty"), "")

	src := newSource()
	a := New(Config{Concurrency: 2}, zlog.Logger, src)

	report, err := a.Run(context.Background(), root)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	require.Len(t, report.Entries, 9)

	byPlace := make(map[string]Entry)
	for _, e := range report.Entries {
		byPlace[e.Dockerfile+":"+e.Image+":"+e.Current] = e
	}

	e := byPlace[ubuntu+":ubuntu:16.04"]
	assert.Equal(t, StatusOutdated, e.Status)
	assert.Equal(t, "20.04", e.Latest)
	assert.Equal(t, 2, e.Newer)
	require.NotNil(t, e.LastUpdated)

	e = byPlace[python+":python:3.9-alpine"]
	assert.Equal(t, StatusOutdated, e.Status)
	assert.Equal(t, "3.10-alpine", e.Latest)
	assert.Equal(t, "build", e.Stage)

	e = byPlace[python+":alpine:3.19"]
	assert.Equal(t, StatusUpToDate, e.Status)

	e = byPlace[redis+":redis:9.1"]
	assert.Equal(t, StatusPinNotFound, e.Status)
	assert.Equal(t, "8.10", e.Latest)

	e = byPlace[node+":node:20.11"]
	assert.Equal(t, StatusNoMatchingTags, e.Status)
	assert.Empty(t, e.Latest)

	e = byPlace[broken+":postgres:16.1"]
	assert.Equal(t, StatusFailed, e.Status)
	assert.Contains(t, e.Error, "registry is unavailable")

	e = byPlace[broken+":ubuntu:16.04_1"]
	assert.Equal(t, StatusInvalid, e.Status)

	e = byPlace[broken+":ubuntu:"]
	assert.Equal(t, StatusInvalid, e.Status)
	assert.Contains(t, e.Error, dockerfile.ErrMissingTag.Error())

	e = byPlace[empty+"::"]
	assert.Equal(t, StatusInvalid, e.Status)

	summary := report.Summary()
	assert.Equal(t, 2, summary[StatusOutdated])
	assert.Equal(t, 1, summary[StatusUpToDate])
	assert.Equal(t, 3, summary[StatusInvalid])
	assert.Len(t, report.Outdated(), 2)

	for i := 1; i < len(report.Entries); i++ {
		prev, cur := report.Entries[i-1], report.Entries[i]
		assert.True(t, prev.Dockerfile < cur.Dockerfile || (prev.Dockerfile == cur.Dockerfile && prev.Line <= cur.Line))
	}
}

func TestAuditor_Run_NoRoots(t *testing.T) {
	a := New(Config{}, zlog.Logger, newSource())

	_, err := a.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, dockerfile.ErrNoRoots))
}

func TestAuditor_Run_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeDockerfile(t, root, "FROM ubuntu:16.04\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}, zlog.Logger, newSource()).Run(ctx, root)
	assert.Error(t, err)
}

func TestAuditor_Check(t *testing.T) {
	a := New(Config{}, zlog.Logger, newSource())

	entry := a.Check(context.Background(), dockerfile.ParseReference("alpine:3.18"))
	assert.Equal(t, StatusOutdated, entry.Status)
	assert.Equal(t, "3.19", entry.Latest)
	assert.Equal(t, "alpine", entry.Image)
	assert.Equal(t, "library/alpine", entry.Repository)
	assert.Equal(t, 1, entry.Newer)
}
