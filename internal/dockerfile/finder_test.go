package dockerfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("FROM alpine:3.18\n"), 0o644))
}

func TestFinder_Find(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "Dockerfile"))
	touch(t, filepath.Join(root, "api", "Dockerfile"))
	touch(t, filepath.Join(root, "api", "deep", "nested", "Dockerfile"))
	touch(t, filepath.Join(root, "api", "Dockerfile.dev"))
	touch(t, filepath.Join(root, "web", "dockerfile"))
	touch(t, filepath.Join(root, ".git", "Dockerfile"))
	touch(t, filepath.Join(root, "node_modules", "pkg", "Dockerfile"))

	f := NewFinder(zlog.Logger, nil)

	found, err := f.Find(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "Dockerfile"),
		filepath.Join(root, "api", "Dockerfile"),
		filepath.Join(root, "api", "deep", "nested", "Dockerfile"),
	}, found)
}

func TestFinder_Patterns(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "Dockerfile"))
	touch(t, filepath.Join(root, "Dockerfile.dev"))
	touch(t, filepath.Join(root, "app.Dockerfile"))
	touch(t, filepath.Join(root, "README.md"))

	f := NewFinder(zlog.Logger, []string{"Dockerfile", "Dockerfile.*", "*.Dockerfile"})

	found, err := f.Find(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestFinder_MissingRoots(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Dockerfile"))

	f := NewFinder(zlog.Logger, nil)

	found, err := f.Find(context.Background(), filepath.Join(root, "missing"), root, root)
	require.NoError(t, err, "one missing root must not fail the others")
	assert.Equal(t, []string{filepath.Join(root, "Dockerfile")}, found)

	_, err = f.Find(context.Background(), filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, ErrNoRoots))
}

func TestFinder_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Dockerfile"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFinder(zlog.Logger, nil).Find(ctx, root)
	assert.True(t, errors.Is(err, context.Canceled))
}
