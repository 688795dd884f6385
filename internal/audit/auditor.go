package audit

import (
	"context"
	"time"

	"github.com/lodthe/fromcheck/internal/dockerfile"
	"github.com/lodthe/fromcheck/internal/metrics"
	"github.com/lodthe/fromcheck/pkg/versionscheme"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

// TagSource provides registry tags of a repository, e.g. "library/ubuntu".
type TagSource interface {
	Get(ctx context.Context, repository string) ([]versionscheme.Tag, error)
}

type Config struct {
	// Patterns are the base name patterns of Dockerfiles.
	Patterns []string

	// Concurrency limits how many images are checked at the same time.
	Concurrency int
}

// Auditor checks whether base images of Dockerfiles are pinned to their latest tags.
type Auditor struct {
	cfg    Config
	logger zerolog.Logger
	finder *dockerfile.Finder
	tags   TagSource
}

func New(cfg Config, logger zerolog.Logger, tags TagSource) *Auditor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Auditor{
		cfg:    cfg,
		logger: logger,
		finder: dockerfile.NewFinder(logger, cfg.Patterns),
		tags:   tags,
	}
}

// Run audits every Dockerfile found under the roots.
//
// A failure of a single Dockerfile or image is recorded in its entry and
// does not stop the audit. Run fails only when the context is done or
// none of the roots can be scanned.
func (a *Auditor) Run(ctx context.Context, roots ...string) (*Report, error) {
	report := newReport(roots)
	startedAt := time.Now()

	files, err := a.finder.Find(ctx, roots...)
	if err != nil {
		return nil, errors.Wrap(err, "dockerfile discovery failed")
	}

	a.logger.Info().Strs("roots", roots).Int("dockerfiles", len(files)).Msg("dockerfiles have been found")

	var images []dockerfile.BaseImage
	for _, path := range files {
		parsed, err := dockerfile.ParseFile(path)
		if err != nil {
			a.logger.Warn().Err(err).Str("dockerfile", path).Msg("skipping the dockerfile")
			metrics.Audit.Image(string(StatusInvalid))

			report.Entries = append(report.Entries, Entry{
				Dockerfile: path,
				Status:     StatusInvalid,
				Error:      err.Error(),
			})

			continue
		}

		images = append(images, parsed...)
	}

	entries := make([]Entry, len(images))

	var g errgroup.Group
	g.SetLimit(a.cfg.Concurrency)
	for i := range images {
		i := i
		g.Go(func() error {
			entries[i] = a.Check(ctx, images[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Entries = append(report.Entries, entries...)
	report.sortEntries()
	report.FinishedAt = time.Now().UTC()

	outdated := len(report.Outdated())
	metrics.Audit.Finished(outdated, startedAt)

	a.logger.Info().
		Str("id", report.ID).
		Int("images", len(report.Entries)).
		Int("outdated", outdated).
		Dur("elapsed", time.Since(startedAt)).
		Msg("audit has been finished")

	return report, nil
}

// StatusOf classifies a successful resolution.
func StatusOf(res versionscheme.Result) Status {
	switch {
	case res.Latest == nil:
		return StatusNoMatchingTags
	case !res.CurrentFound():
		return StatusPinNotFound
	case res.UpToDate():
		return StatusUpToDate
	default:
		return StatusOutdated
	}
}

// Check resolves the latest tag of a single base image.
func (a *Auditor) Check(ctx context.Context, img dockerfile.BaseImage) Entry {
	entry := a.check(ctx, img)
	metrics.Audit.Image(string(entry.Status))

	return entry
}

func (a *Auditor) check(ctx context.Context, img dockerfile.BaseImage) Entry {
	entry := Entry{
		Dockerfile: img.Dockerfile,
		Line:       img.Line,
		Stage:      img.Stage,
		Image:      img.Name,
		Repository: img.Repository,
		Current:    img.Tag,
	}
	if entry.Image == "" {
		entry.Image = img.Raw
	}

	logger := a.logger.With().
		Str("dockerfile", img.Dockerfile).
		Int("line", img.Line).
		Str("image", img.Raw).
		Logger()

	if img.Err != nil {
		logger.Warn().Err(img.Err).Msg("base image cannot be audited")

		entry.Status = StatusInvalid
		entry.Error = img.Err.Error()

		return entry
	}

	tags, err := a.tags.Get(ctx, img.Repository)
	if err != nil {
		logger.Error().Err(err).Msg("failed to get tags")

		entry.Status = StatusFailed
		entry.Error = err.Error()

		return entry
	}

	res, err := versionscheme.Resolve(img.Tag, tags)
	switch {
	case errors.Is(err, versionscheme.ErrNoMatchingTags):
		logger.Warn().Int("tags", len(tags)).Msg("no registry tag shares the version scheme of the pinned tag")

		entry.Status = StatusNoMatchingTags
		entry.Error = err.Error()

		return entry

	case versionscheme.Fatal(err):
		logger.Warn().Err(err).Msg("pinned tag cannot be parsed")

		entry.Status = StatusInvalid
		entry.Error = err.Error()

		return entry

	case err != nil:
		logger.Error().Err(err).Msg("failed to resolve the latest tag")

		entry.Status = StatusFailed
		entry.Error = err.Error()

		return entry
	}

	entry.Latest = res.Latest.Name
	if !res.Latest.LastUpdated.IsZero() {
		lastUpdated := res.Latest.LastUpdated
		entry.LastUpdated = &lastUpdated
	}

	entry.Status = StatusOf(res)
	entry.Newer = res.Newer()
	if entry.Status == StatusPinNotFound {
		logger.Warn().Str("latest", entry.Latest).Msg("pinned tag is not among the registry tags of the same scheme")
	}

	logger.Debug().Str("latest", entry.Latest).Str("status", string(entry.Status)).Msg("base image has been checked")

	return entry
}
