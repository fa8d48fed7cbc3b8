package model

import (
	"image"
	"testing"
)

func TestThumbnail_ClaimOnce(t *testing.T) {
	th := NewThumbnail(0, 0, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil)
	if th.Claimed() {
		t.Fatal("new thumbnail reported claimed")
	}
	if !th.Claim() {
		t.Fatal("first Claim() returned false")
	}
	if th.Claim() {
		t.Error("second Claim() returned true")
	}
}

func TestThumbnail_ReleaseOnce(t *testing.T) {
	calls := 0
	th := NewThumbnail(1, 0, image.NewRGBA(image.Rect(0, 0, 2, 2)), func() { calls++ })
	th.Release()
	th.Release()

	if calls != 1 {
		t.Errorf("release callback ran %d times, expected 1", calls)
	}
	if th.Image != nil {
		t.Error("Release() did not drop the image")
	}
}
