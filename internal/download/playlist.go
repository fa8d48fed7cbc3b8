package download

import (
	"context"
	"fmt"
	"strings"

	ytlist "github.com/ytget/ytdlp/v2"
)

// URL parameters and templates
const (
	PlaylistParam           = "list="
	ParamSeparator          = "&"
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Expand turns a playlist URI into one URI per entry; other URIs are returned as is
func (s *Service) Expand(ctx context.Context, uri string) ([]string, error) {
	playlistID := extractPlaylistID(uri)
	if playlistID == "" {
		return []string{uri}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.playlistTimeout)
	defer cancel()

	items, err := ytlist.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("playlist %s is empty", playlistID)
	}

	uris := make([]string, 0, len(items))
	for _, it := range items {
		uris = append(uris, fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID))
	}
	return uris, nil
}

// extractPlaylistID extracts the playlist ID from various URL formats
func extractPlaylistID(url string) string {
	parts := strings.SplitN(url, PlaylistParam, 2)
	if len(parts) < 2 {
		return ""
	}
	id := parts[1]
	if i := strings.Index(id, ParamSeparator); i >= 0 {
		id = id[:i]
	}
	return id
}
