// Package project holds the in-memory state of the project being edited: the
// ordered media items with the transitions that link them, the audio tracks,
// and the metadata stored next to the engine files. A Project is not safe for
// concurrent use; the editor mutates it from its coordination goroutine only.
package project
