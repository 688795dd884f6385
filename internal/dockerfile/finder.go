package dockerfile

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var DefaultPatterns = []string{"Dockerfile"}

var ErrNoRoots = errors.New("none of the directories can be scanned")

// Finder looks for Dockerfiles in directory trees.
type Finder struct {
	logger   zerolog.Logger
	patterns []string
}

// NewFinder creates a finder that matches file base names against the
// given glob patterns (e.g. "Dockerfile", "*.Dockerfile").
func NewFinder(logger zerolog.Logger, patterns []string) *Finder {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	return &Finder{
		logger:   logger,
		patterns: patterns,
	}
}

// Find walks every root recursively and returns the sorted paths of Dockerfiles.
//
// Directories that cannot be read are skipped. An error is returned only
// when the context is done or none of the roots can be walked.
func (f *Finder) Find(ctx context.Context, roots ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var found []string
	var failed int

	for _, root := range roots {
		err := f.walk(ctx, root, func(path string) {
			if _, ok := seen[path]; ok {
				return
			}

			seen[path] = struct{}{}
			found = append(found, path)
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			f.logger.Error().Err(err).Str("root", root).Msg("failed to scan the directory")
			failed++
		}
	}

	if len(roots) > 0 && failed == len(roots) {
		return nil, ErrNoRoots
	}

	sort.Strings(found)

	return found, nil
}

func (f *Finder) walk(ctx context.Context, root string, visit func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				return errors.Wrap(err, "cannot read the root")
			}

			f.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Type().IsRegular() && f.match(d.Name()) {
			visit(path)
		}

		return nil
	})
}

func (f *Finder) match(name string) bool {
	for _, p := range f.patterns {
		ok, err := filepath.Match(p, name)
		if err == nil && ok {
			return true
		}
	}

	return false
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	switch name {
	case "vendor", "node_modules":
		return true
	default:
		return false
	}
}
