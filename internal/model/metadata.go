package model

import "time"

// Download records a file fetched into a project folder
type Download struct {
	SourceURI string    `json:"sourceUri"`
	MimeType  string    `json:"mimeType"`
	Filename  string    `json:"filename"`
	Time      time.Time `json:"time"`
}

// Metadata is the per-project record stored next to the engine's own files
type Metadata struct {
	Name          string        `json:"name"`
	Theme         string        `json:"theme,omitempty"`
	AspectRatio   AspectRatio   `json:"aspectRatio,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	SavedAt       time.Time     `json:"savedAt"`
	Playhead      time.Duration `json:"playhead"`
	Duration      time.Duration `json:"duration"`
	Zoom          int           `json:"zoom"`
	ExportedMovie string        `json:"exportedMovie,omitempty"`
	Downloads     []Download    `json:"downloads,omitempty"`
}
