package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

// renderThumbnails emits req.Count frames spread evenly over [req.Start, req.End].
// Frames are flat placeholders shaded by position; a decoding engine replaces them.
func renderThumbnails(ctx context.Context, req ThumbnailRequest, emit func(*model.Thumbnail)) error {
	if req.Count <= 0 {
		return errors.New("thumbnail count must be positive")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return errors.New("thumbnail size must be positive")
	}

	step := time.Duration(0)
	if req.Count > 1 && req.End > req.Start {
		step = (req.End - req.Start) / time.Duration(req.Count-1)
	}
	for i := 0; i < req.Count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
		shade := uint8(32 + (191*i)/max(req.Count-1, 1))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Gray{Y: shade}}, image.Point{}, draw.Src)
		emit(model.NewThumbnail(i, req.Start+step*time.Duration(i), img, nil))
	}
	return nil
}
