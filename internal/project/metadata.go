package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ytget/movie-editor/internal/model"
)

// MetadataFileName is stored inside every project folder
const MetadataFileName = "metadata.json"

// ReadMetadata loads the metadata file of the project in dir. A missing file
// yields defaults named after the folder.
func ReadMetadata(dir string) (model.Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if errors.Is(err, os.ErrNotExist) {
		return model.Metadata{Name: filepath.Base(dir)}, nil
	}
	if err != nil {
		return model.Metadata{}, fmt.Errorf("failed to read project metadata: %w", err)
	}

	var md model.Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return model.Metadata{}, fmt.Errorf("failed to parse project metadata: %w", err)
	}
	if md.Name == "" {
		md.Name = filepath.Base(dir)
	}
	return md, nil
}

// WriteMetadata replaces the metadata file of the project in dir
func WriteMetadata(dir string, md model.Metadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project metadata: %w", err)
	}

	tmp, err := os.CreateTemp(dir, MetadataFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write project metadata: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write project metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write project metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, MetadataFileName)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write project metadata: %w", err)
	}
	return nil
}
