package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Timeout constants
const (
	DefaultResolveTimeout = 60 * time.Second
)

// Default values
const (
	DefaultFallbackQuality = "360p"
	AudioMimePrefix        = "audio"
)

// Sentinel errors
var (
	ErrNoOption   = errors.New("no matching stream")
	ErrInvalidURL = errors.New("invalid URL")
)

// Video is a resolved single item able to derive its transfer options
type Video interface {
	Source() *model.Source
	Highest() (*model.Option, error)
	ByQuality(label string) (*model.Option, error)
	AudioOnly() (*model.Option, error)
}

// YouTubeResolver resolves videos and playlists using kkdai/youtube and
// falls back to the ytdlp playlist parser for collections it cannot read.
type YouTubeResolver struct {
	client    *youtube.Client
	playlists *PlaylistParserService
	timeout   time.Duration
	logger    *slog.Logger
}

// NewYouTubeResolver creates a resolver sharing httpClient with the playlist fallback
func NewYouTubeResolver(httpClient *http.Client, playlists *PlaylistParserService, logger *slog.Logger) *YouTubeResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTubeResolver{
		client:    &youtube.Client{HTTPClient: httpClient},
		playlists: playlists,
		timeout:   DefaultResolveTimeout,
		logger:    logger,
	}
}

// SetTimeout sets the timeout for metadata lookups. Non-positive values are ignored.
func (r *YouTubeResolver) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		r.timeout = timeout
	}
}

// ResolveVideo fetches metadata and stream formats of a single video
func (r *YouTubeResolver) ResolveVideo(ctx context.Context, url string) (Video, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	v, err := r.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video %s: %w", url, err)
	}
	return newYouTubeVideo(r.client, v), nil
}

// ResolveBest resolves a video and returns its highest quality progressive option
func (r *YouTubeResolver) ResolveBest(ctx context.Context, url string) (*model.Source, *model.Option, error) {
	v, err := r.ResolveVideo(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	opt, err := v.Highest()
	if err != nil {
		return v.Source(), nil, err
	}
	return v.Source(), opt, nil
}

// ResolveCollection enumerates the items of a playlist URL in platform order
func (r *YouTubeResolver) ResolveCollection(ctx context.Context, url string) (*model.Collection, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pl, err := r.client.GetPlaylistContext(lookupCtx, url)
	if err == nil {
		return collectionFromPlaylist(url, pl), nil
	}

	if r.playlists == nil || !r.playlists.isValidPlaylistURL(url) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	r.logger.Debug("playlist_fallback", "url", url, "err", err)
	collection, fbErr := r.playlists.ParsePlaylist(ctx, url)
	if fbErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, errors.Join(err, fbErr))
	}
	return collection, nil
}

func collectionFromPlaylist(url string, pl *youtube.Playlist) *model.Collection {
	c := model.NewCollection(url)
	c.ID = pl.ID
	c.Title = pl.Title
	for _, entry := range pl.Videos {
		if entry == nil {
			continue
		}
		c.AddItem(&model.CollectionItem{
			ID:    entry.ID,
			Title: entry.Title,
			URL:   fmt.Sprintf(model.VideoURLTemplate, entry.ID),
		})
	}
	return c
}

// youtubeVideo adapts a kkdai video to the Video interface
type youtubeVideo struct {
	client *youtube.Client
	video  *youtube.Video
	source *model.Source
}

func newYouTubeVideo(client *youtube.Client, v *youtube.Video) *youtubeVideo {
	return &youtubeVideo{
		client: client,
		video:  v,
		source: &model.Source{
			ID:           v.ID,
			URL:          fmt.Sprintf(model.VideoURLTemplate, v.ID),
			Title:        v.Title,
			Author:       v.Author,
			ChannelID:    v.ChannelID,
			Duration:     v.Duration,
			ThumbnailURL: bestThumbnail(v.Thumbnails),
		},
	}
}

func (v *youtubeVideo) Source() *model.Source {
	return v.source
}

// Highest returns the progressive (audio+video) format with the largest height
func (v *youtubeVideo) Highest() (*model.Option, error) {
	f := highestProgressive(v.video.Formats)
	if f == nil {
		return nil, fmt.Errorf("%w: no progressive format for %s", ErrNoOption, v.video.ID)
	}
	return v.option(model.OptionHigh, f), nil
}

// ByQuality returns the progressive format whose quality label starts with label
func (v *youtubeVideo) ByQuality(label string) (*model.Option, error) {
	f := progressiveByQuality(v.video.Formats, label)
	if f == nil {
		return nil, fmt.Errorf("%w: no %s format for %s", ErrNoOption, label, v.video.ID)
	}
	return v.option(model.OptionLow, f), nil
}

// AudioOnly returns the first audio-only format
func (v *youtubeVideo) AudioOnly() (*model.Option, error) {
	f := firstAudioOnly(v.video.Formats)
	if f == nil {
		return nil, fmt.Errorf("%w: no audio format for %s", ErrNoOption, v.video.ID)
	}
	return v.option(model.OptionAudio, f), nil
}

func (v *youtubeVideo) option(kind model.OptionKind, f *youtube.Format) *model.Option {
	label := f.QualityLabel
	if label == "" {
		label = f.Quality
	}
	return &model.Option{
		Kind:     kind,
		Label:    label,
		MimeType: f.MimeType,
		Size:     f.ContentLength,
		Transfer: v.transfer(f),
	}
}

func (v *youtubeVideo) transfer(f *youtube.Format) model.TransferFunc {
	return func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
		stream, size, err := v.client.GetStreamContext(ctx, v.video, f)
		if err != nil {
			return fmt.Errorf("failed to open stream: %w", err)
		}
		defer stream.Close()

		var r io.Reader = stream
		if progress != nil {
			r = &progressReader{r: stream, total: size, fn: progress}
		}
		if _, err := io.Copy(w, r); err != nil {
			return fmt.Errorf("failed to copy stream: %w", err)
		}
		return nil
	}
}

// highestProgressive picks the progressive format with the largest height,
// preferring the higher bitrate on ties
func highestProgressive(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !isProgressive(f) {
			continue
		}
		if best == nil || f.Height > best.Height || (f.Height == best.Height && f.Bitrate > best.Bitrate) {
			best = f
		}
	}
	return best
}

func progressiveByQuality(formats youtube.FormatList, label string) *youtube.Format {
	for i := range formats {
		f := &formats[i]
		if isProgressive(f) && strings.HasPrefix(f.QualityLabel, label) {
			return f
		}
	}
	return nil
}

func firstAudioOnly(formats youtube.FormatList) *youtube.Format {
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels > 0 && f.Width == 0 && f.Height == 0 && strings.HasPrefix(f.MimeType, AudioMimePrefix) {
			return f
		}
	}
	return nil
}

func isProgressive(f *youtube.Format) bool {
	return f.AudioChannels > 0 && f.Width > 0 && f.Height > 0
}

func bestThumbnail(thumbs youtube.Thumbnails) string {
	var url string
	var width uint
	for _, th := range thumbs {
		if url == "" || th.Width > width {
			url = th.URL
			width = th.Width
		}
	}
	return url
}

// progressReader reports cumulative bytes read
type progressReader struct {
	r     io.Reader
	done  int64
	total int64
	fn    model.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.fn(p.done, p.total)
	}
	return n, err
}
