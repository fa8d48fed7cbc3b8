package download

// Package download fetches media into a project folder. Remote URIs go through
// yt-dlp (via github.com/lrstanley/go-ytdlp), playlist URIs are expanded with
// github.com/ytget/ytdlp/v2, and local files are copied. Every fetched file is
// classified by content with github.com/wailsapp/mimetype.
