package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeMoviesDir(t *testing.T) {
	moviesDir, err := GetHomeMoviesDir()
	if err != nil {
		t.Fatalf("Failed to get movies directory: %v", err)
	}
	if moviesDir == "" {
		t.Fatal("Movies directory is empty")
	}
	if !strings.Contains(moviesDir, MoviesDirName) {
		t.Errorf("Movies directory %s does not contain %s", moviesDir, MoviesDirName)
	}

	projects, err := GetDefaultProjectsDir()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(projects) != moviesDir {
		t.Errorf("projects dir %s is not inside %s", projects, moviesDir)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("clip"), 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "nested", "dest.txt")
	if err := CopyFile(src, dest); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "clip" {
		t.Errorf("copied content = %q, %v", data, err)
	}

	if err := CopyFile(filepath.Join(dir, "missing"), dest); err == nil {
		t.Error("Expected error for missing source")
	}
	if err := CopyFile("", dest); err == nil {
		t.Error("Expected error for empty source")
	}
}

func TestUniqueFilename(t *testing.T) {
	dir := t.TempDir()

	first, err := UniqueFilename(dir, "movie.mp4")
	if err != nil || first != filepath.Join(dir, "movie.mp4") {
		t.Fatalf("UniqueFilename = %s, %v", first, err)
	}
	if err := os.WriteFile(first, nil, 0644); err != nil {
		t.Fatal(err)
	}

	second, err := UniqueFilename(dir, "movie.mp4")
	if err != nil || second != filepath.Join(dir, "movie-1.mp4") {
		t.Errorf("UniqueFilename after collision = %s, %v", second, err)
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		uri  string
		path string
		ok   bool
	}{
		{"/sdcard/DCIM/a.mp4", "/sdcard/DCIM/a.mp4", true},
		{"file:///tmp/b.jpg", "/tmp/b.jpg", true},
		{"https://www.youtube.com/watch?v=abc", "", false},
	}

	for _, test := range tests {
		path, ok := LocalPath(test.uri)
		if path != test.path || ok != test.ok {
			t.Errorf("LocalPath(%s) = %q, %v; expected %q, %v", test.uri, path, ok, test.path, test.ok)
		}
	}
}

func TestRegisterWithGallery_Desktop(t *testing.T) {
	if IsAndroid() {
		t.Skip("desktop-only behavior")
	}
	if err := RegisterWithGallery("/tmp/movie.mp4"); err != nil {
		t.Errorf("RegisterWithGallery returned %v", err)
	}
}
