package model

import (
	"image"
	"sync"
	"sync/atomic"
	"time"
)

// Thumbnail is one decoded frame handed to observers. The first observer that
// calls Claim owns the image and must call Release when done with it; an
// unclaimed thumbnail is released by the processor after delivery.
type Thumbnail struct {
	Index int
	Time  time.Duration
	Image image.Image

	claimed  atomic.Bool
	release  func()
	released sync.Once
}

// NewThumbnail wraps img; release runs exactly once when the image is no longer needed.
func NewThumbnail(index int, at time.Duration, img image.Image, release func()) *Thumbnail {
	return &Thumbnail{Index: index, Time: at, Image: img, release: release}
}

// Claim takes ownership. It returns false when someone else already owns the thumbnail.
func (t *Thumbnail) Claim() bool {
	return t.claimed.CompareAndSwap(false, true)
}

// Claimed reports whether an observer took ownership
func (t *Thumbnail) Claimed() bool {
	return t.claimed.Load()
}

// Release frees the image. Calling it more than once is a no-op.
func (t *Thumbnail) Release() {
	t.released.Do(func() {
		if t.release != nil {
			t.release()
		}
		t.Image = nil
	})
}
