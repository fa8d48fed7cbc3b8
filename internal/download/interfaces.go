package download

import (
	"context"

	"github.com/ytget/movie-editor/internal/model"
)

// Fetcher defines the interface for the download service.
type Fetcher interface {
	SetUpdateCallback(func(*model.Job))

	// Expand turns a playlist URI into one URI per entry; other URIs are returned as is
	Expand(ctx context.Context, uri string) ([]string, error)

	// Fetch stores the media behind uri in destDir
	Fetch(ctx context.Context, uri, destDir string) (*Result, error)

	GetJob(id string) (*model.Job, bool)
}
