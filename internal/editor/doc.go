// Package editor runs edit commands against the active movie project.
//
// Commands are routed by affinity to three serial worker queues (timeline,
// lightweight audio and thumbnails). Every result is marshalled back onto a
// single coordination loop, which owns the in-memory project, applies or
// rolls back optimistic values and fans typed events out to observers.
// Observers are called on the loop and need no locking of their own.
package editor
