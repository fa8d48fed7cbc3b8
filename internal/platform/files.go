package platform

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Folder names
const (
	MoviesDirName     = "Movies"
	AndroidMoviesDir  = "/sdcard/Movies"
	ProjectsDirName   = "MovieEditor"
	MaxUniqueAttempts = 1000
)

// Gallery registration commands
const (
	AndroidActivityManager = "am"
	MediaScannerAction     = "android.intent.action.MEDIA_SCANNER_SCAN_FILE"
)

// IsAndroid reports whether the process runs on Android
func IsAndroid() bool {
	return runtime.GOOS == OSAndroid ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != "" ||
		os.Getenv("ANDROID_STORAGE") != "" ||
		filepath.Base(os.Args[0]) == "libdist.so" // Fyne Android apps run as libdist.so
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeMoviesDir returns the standard Movies directory for the user
func GetHomeMoviesDir() (string, error) {
	if IsAndroid() {
		// External storage so exported movies appear in Gallery
		return AndroidMoviesDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, MoviesDirName), nil
}

// GetDefaultProjectsDir returns the folder that holds one subfolder per project
func GetDefaultProjectsDir() (string, error) {
	movies, err := GetHomeMoviesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(movies, ProjectsDirName), nil
}

// CopyFile copies src to dest, creating the destination folder
func CopyFile(src, dest string) error {
	src = filepath.Clean(src)
	dest = filepath.Clean(dest)
	if src == "" || dest == "" || src == "." || dest == "." {
		return errors.New("copy file: missing src/dest")
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), DefaultDirPermissions); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// UniqueFilename returns dir/name, or dir/name-N.ext when that file already exists
func UniqueFilename(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < MaxUniqueAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

// LocalPath returns the filesystem path for plain paths and file:// URIs.
// ok is false for remote URIs.
func LocalPath(uri string) (path string, ok bool) {
	if !strings.Contains(uri, "://") {
		return uri, true
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return u.Path, true
}

// RegisterWithGallery makes a finished movie visible in the system gallery.
// Only Android needs an explicit media scan; elsewhere it is a no-op.
func RegisterWithGallery(filePath string) error {
	if !IsAndroid() {
		return nil
	}

	cmd := exec.Command(AndroidActivityManager, "broadcast", "-a", MediaScannerAction, "-d", "file://"+filePath)

	// Don't block the caller on the broadcast
	go func() {
		if err := cmd.Run(); err != nil {
			log.Printf("Failed to notify media scanner about %s: %v", filePath, err)
		}
	}()
	return nil
}
