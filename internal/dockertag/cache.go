package dockertag

import (
	"context"
	"sync"
	"time"

	"github.com/lodthe/fromcheck/internal/metrics"
	"github.com/lodthe/fromcheck/pkg/dockerhub"
	"github.com/lodthe/fromcheck/pkg/versionscheme"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type DockerHubClient interface {
	GetTags(ctx context.Context, repository string) ([]dockerhub.ImageTag, error)
}

type cacheItem struct {
	tags    []versionscheme.Tag
	savedAt time.Time
}

func (c *cacheItem) expired(expirationTime time.Duration) bool {
	return time.Since(c.savedAt) > expirationTime
}

// Cache is a cache for the lists of tags of docker repositories.
//
// Concurrent requests for a repository that is not cached share
// a single registry request.
type Cache struct {
	config Config
	logger zerolog.Logger
	cli    DockerHubClient

	group singleflight.Group

	mu    sync.RWMutex
	items map[string]cacheItem
}

func NewCache(config Config, logger zerolog.Logger, cli DockerHubClient) *Cache {
	if config.ExpirationTime <= 0 {
		config.ExpirationTime = DefaultExpirationTime
	}

	return &Cache{
		config: config,
		logger: logger,
		cli:    cli,
		items:  make(map[string]cacheItem),
	}
}

// Get returns tags of the repository in registry order.
// The returned slice must not be modified.
func (c *Cache) Get(ctx context.Context, repository string) ([]versionscheme.Tag, error) {
	c.mu.RLock()
	item, exists := c.items[repository]
	c.mu.RUnlock()

	if exists && !item.expired(c.config.ExpirationTime) {
		metrics.TagCache.Hit()
		return item.tags, nil
	}

	metrics.TagCache.Miss()

	// The request is shared, so one caller giving up must not cancel it for the others.
	ch := c.group.DoChan(repository, func() (any, error) {
		return c.update(context.WithoutCancel(ctx), repository)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case res := <-ch:
		if res.Err != nil {
			metrics.TagCache.Error()
			return nil, res.Err
		}

		return res.Val.([]versionscheme.Tag), nil
	}
}

// Invalidate drops the cached tags of the repository.
func (c *Cache) Invalidate(repository string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, repository)
}

// Len returns the number of cached repositories, including expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

func (c *Cache) update(ctx context.Context, repository string) ([]versionscheme.Tag, error) {
	startedAt := time.Now()

	items, err := c.cli.GetTags(ctx, repository)
	if err != nil {
		c.logger.Error().Err(err).Str("repository", repository).Msg("failed to get docker hub tags")
		return nil, errors.Wrap(err, "failed to get tags from docker hub")
	}

	tags := dockerhub.Tags(items)

	c.mu.Lock()
	c.items[repository] = cacheItem{
		tags:    tags,
		savedAt: time.Now(),
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str("repository", repository).
		Dur("elapsed", time.Since(startedAt)).
		Int("tag_count", len(tags)).
		Msg("docker tag cache has been updated")

	return tags, nil
}
