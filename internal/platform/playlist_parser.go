package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 30 * time.Second
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// Default values
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	DefaultTitleSuffix   = " - Playlist"
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
)

// PlaylistParserService enumerates playlist items through the ytdlp library
type PlaylistParserService struct {
	timeout    time.Duration
	httpClient *http.Client
}

// NewPlaylistParserService creates a new playlist parser service
func NewPlaylistParserService(httpClient *http.Client) *PlaylistParserService {
	return &PlaylistParserService{
		timeout:    DefaultPlaylistParseTimeout,
		httpClient: httpClient,
	}
}

// ParsePlaylist parses a YouTube playlist URL and returns its items in order
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, url string) (*model.Collection, error) {
	if !p.isValidPlaylistURL(url) {
		return nil, fmt.Errorf("invalid playlist URL format: %s", url)
	}

	playlistID, err := p.extractPlaylistID(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	if p.httpClient != nil {
		d = d.WithHTTPClient(p.httpClient)
	}
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	found := make([]*model.CollectionItem, 0, len(items))
	for _, it := range items {
		found = append(found, &model.CollectionItem{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(model.VideoURLTemplate, it.VideoID),
		})
	}

	return p.buildCollection(url, playlistID, found), nil
}

// buildCollection assembles a collection keeping the platform order of items
func (p *PlaylistParserService) buildCollection(url, playlistID string, items []*model.CollectionItem) *model.Collection {
	collection := model.NewCollection(url)
	collection.ID = playlistID
	for _, item := range items {
		collection.AddItem(item)
	}

	if collection.Len() > 0 {
		collection.Title = p.extractPlaylistTitle(collection.Items)
	} else {
		collection.Title = fmt.Sprintf("Playlist %s", playlistID)
	}

	return collection
}

// isValidPlaylistURL checks if the URL carries a playlist parameter
func (p *PlaylistParserService) isValidPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistURLParam)
}

// extractPlaylistID extracts the playlist ID from a YouTube playlist URL
func (p *PlaylistParserService) extractPlaylistID(url string) (string, error) {
	// Support various formats:
	// - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
	// - https://www.youtube.com/playlist?list=PLAYLIST_ID
	if !strings.Contains(url, PlaylistURLParam) {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}

	parts := strings.Split(url, PlaylistURLParam)
	if len(parts) < 2 {
		return "", fmt.Errorf("could not extract playlist ID from URL")
	}

	playlistID := parts[1]
	if strings.Contains(playlistID, PlaylistParamSeparator) {
		playlistID = strings.Split(playlistID, PlaylistParamSeparator)[0]
	}

	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}

	return playlistID, nil
}

// extractPlaylistTitle derives a title when the library does not report one
func (p *PlaylistParserService) extractPlaylistTitle(items []*model.CollectionItem) string {
	if len(items) == 0 {
		return DefaultPlaylistTitle
	}

	firstTitle := items[0].Title
	if firstTitle == "" {
		return DefaultPlaylistTitle
	}
	// MaxTitleLength counts characters, not bytes
	if runes := []rune(firstTitle); len(runes) > MaxTitleLength {
		firstTitle = string(runes[:MaxTitleLength]) + TitleTruncateSuffix
	}

	return firstTitle + DefaultTitleSuffix
}

// SetTimeout sets the timeout for playlist parsing. Non-positive values are ignored.
func (p *PlaylistParserService) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}
