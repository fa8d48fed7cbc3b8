package model

// Package model defines the domain structures shared by the editor: media
// items, transitions, overlays, effects, audio tracks and the metadata kept
// next to each project. Every user-editable property is an Editable value that
// carries both the engine-confirmed state and the optimistic state shown to
// the user.
