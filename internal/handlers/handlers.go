package handlers

import (
	"context"
	"time"

	"yt-clipper/internal/batch"
	"yt-clipper/internal/catalog"
	"yt-clipper/internal/jobs"
	"yt-clipper/internal/resolver"
	"yt-clipper/internal/startup"

	"github.com/go-playground/validator/v10"
)

// SourceService is the slice of the resolver the handlers use.
type SourceService interface {
	Probe(ctx context.Context, url string) (resolver.Metadata, error)
	ResolveAndFetch(ctx context.Context, url string) (string, error)
}

// ClipCutter extracts a time range from a local source file.
type ClipCutter interface {
	Cut(ctx context.Context, input string, start, end float64, output string) error
}

type Handlers struct {
	registry *jobs.Registry
	store    *batch.Store
	resolver SourceService
	clipper  ClipCutter
	catalog  *catalog.Catalog
	clipsDir string
	validate *validator.Validate
	started  time.Time
}

func New(registry *jobs.Registry, store *batch.Store, res SourceService, clip ClipCutter, cat *catalog.Catalog, config *startup.Config) *Handlers {
	return &Handlers{
		registry: registry,
		store:    store,
		resolver: res,
		clipper:  clip,
		catalog:  cat,
		clipsDir: config.ClipsDir,
		validate: validator.New(),
		started:  time.Now(),
	}
}
