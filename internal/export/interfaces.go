package export

import (
	"context"

	"github.com/ytget/movie-editor/internal/model"
)

// Exporter defines the interface for the movie export service.
type Exporter interface {
	SetUpdateCallback(func(*model.Job))
	Export(ctx context.Context, req Request, progress func(percent int)) error
	GetJob(jobID string) (*model.Job, bool)
}

// Prober reads stream properties of a media file.
type Prober interface {
	Probe(ctx context.Context, filename string) (*MediaInfo, error)
}
