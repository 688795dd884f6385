package restapi

import (
	"context"

	"github.com/lodthe/fromcheck/internal/audit"
	"github.com/lodthe/fromcheck/pkg/versionscheme"
)

type TagSource interface {
	Get(ctx context.Context, repository string) ([]versionscheme.Tag, error)
}

type ReportRepository interface {
	Get(ctx context.Context, id string) (*audit.Report, error)
}

type LatestReport interface {
	Latest() *audit.Report
}
