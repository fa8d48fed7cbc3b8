package editor

import (
	"context"

	"github.com/ytget/movie-editor/internal/catalog"
	"github.com/ytget/movie-editor/internal/download"
)

// Catalog indexes known projects
type Catalog interface {
	Upsert(ctx context.Context, e catalog.Entry) error
	Remove(ctx context.Context, path string) error
	List(ctx context.Context) ([]catalog.Entry, error)
}

// Downloader brings remote or local media into a project folder
type Downloader interface {
	Expand(ctx context.Context, uri string) ([]string, error)
	Fetch(ctx context.Context, uri, destDir string) (*download.Result, error)
}

// Observer receives every event the service emits. It is called on the
// coordination loop and must not block.
type Observer interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ev Event)

// OnEvent calls f(ev)
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }
