package restapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/lodthe/fromcheck/internal/audit"
	"github.com/lodthe/fromcheck/internal/dockerfile"
	"github.com/lodthe/fromcheck/pkg/dockerhub"
	"github.com/lodthe/fromcheck/pkg/versionscheme"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type tagHandler struct {
	logger zerolog.Logger
	tags   TagSource
}

func newTagHandler(logger zerolog.Logger, tags TagSource) *tagHandler {
	return &tagHandler{
		logger: logger,
		tags:   tags,
	}
}

func (h *tagHandler) handle(r chi.Router) {
	r.Get("/tags", h.getTags)
	r.Get("/latest", h.getLatest)
}

type GetTagsOutput struct {
	Image      string              `json:"image"`
	Repository string              `json:"repository"`
	Tags       []versionscheme.Tag `json:"tags"`
}

func (h *tagHandler) getTags(w http.ResponseWriter, r *http.Request) {
	image := strings.TrimSpace(r.URL.Query().Get("image"))
	if image == "" {
		writeError(w, ErrMissingImage.Error(), http.StatusBadRequest)
		return
	}

	img := dockerfile.ParseReference(image)
	if img.Repository == "" || errors.Is(img.Err, dockerfile.ErrUnsupportedRegistry) {
		writeError(w, errorMessage(img.Err), http.StatusBadRequest)
		return
	}

	tags, ok := h.fetch(w, r, img)
	if !ok {
		return
	}

	writeResult(w, GetTagsOutput{
		Image:      img.Name,
		Repository: img.Repository,
		Tags:       tags,
	})
}

type GetLatestOutput struct {
	Image      string       `json:"image"`
	Current    *string      `json:"current"`
	Latest     *string      `json:"latest"`
	UpdatedAt  *time.Time   `json:"last_updated,omitempty"`
	Candidates int          `json:"candidates"`
	Newer      int          `json:"newer"`
	Status     audit.Status `json:"status"`
}

func (h *tagHandler) getLatest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	image := strings.TrimSpace(query.Get("image"))
	if image == "" {
		writeError(w, ErrMissingImage.Error(), http.StatusBadRequest)
		return
	}
	if tag := strings.TrimSpace(query.Get("tag")); tag != "" {
		image += ":" + tag
	}

	img := dockerfile.ParseReference(image)
	if img.Err != nil {
		code := http.StatusBadRequest
		if errors.Is(img.Err, dockerfile.ErrMissingTag) {
			writeError(w, ErrMissingTag.Error(), code)
			return
		}

		writeError(w, img.Err.Error(), code)

		return
	}

	tags, ok := h.fetch(w, r, img)
	if !ok {
		return
	}

	res, err := versionscheme.Resolve(img.Tag, tags)
	switch {
	case errors.Is(err, versionscheme.ErrNoMatchingTags):
		writeResult(w, GetLatestOutput{
			Image:  img.Name,
			Status: audit.StatusNoMatchingTags,
		})

		return

	case versionscheme.Fatal(err):
		writeError(w, err.Error(), http.StatusBadRequest)
		return

	case err != nil:
		h.logger.Error().Err(err).Str("image", image).Msg("failed to resolve the latest tag")
		writeError(w, "internal error", http.StatusInternalServerError)

		return
	}

	out := GetLatestOutput{
		Image:      img.Name,
		Latest:     &res.Latest.Name,
		Candidates: len(res.Candidates),
		Newer:      res.Newer(),
		Status:     audit.StatusOf(res),
	}
	if res.CurrentFound() {
		out.Current = &res.Current
	}
	if !res.Latest.LastUpdated.IsZero() {
		out.UpdatedAt = &res.Latest.LastUpdated
	}

	writeResult(w, out)
}

func (h *tagHandler) fetch(w http.ResponseWriter, r *http.Request, img dockerfile.BaseImage) ([]versionscheme.Tag, bool) {
	tags, err := h.tags.Get(r.Context(), img.Repository)
	switch {
	case err == nil:
		return tags, true

	case errors.Is(err, dockerhub.ErrRepositoryNotFound):
		writeError(w, "repository not found", http.StatusNotFound)

	case errors.Is(err, dockerhub.ErrRateLimited):
		writeError(w, "registry rate limit exceeded", http.StatusServiceUnavailable)

	default:
		h.logger.Error().Err(err).Str("repository", img.Repository).Msg("failed to get tags")
		writeError(w, "failed to get tags", http.StatusBadGateway)
	}

	return nil, false
}

func errorMessage(err error) string {
	if err == nil {
		return dockerfile.ErrInvalidReference.Error()
	}

	return err.Error()
}
