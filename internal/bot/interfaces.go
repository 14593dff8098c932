package bot

import (
	"context"

	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
)

// Messenger sends and edits chat messages
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPanel(ctx context.Context, chatID int64, panel Panel) error
	SendPhotoURL(ctx context.Context, chatID int64, photoURL, caption string, kb Keyboard) error
	SendVideo(ctx context.Context, chatID int64, path, caption string) error
	SendAudio(ctx context.Context, chatID int64, path, caption string, durationSeconds int) error
	EditPanel(ctx context.Context, chatID int64, messageID int, panel Panel, hasMedia bool) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Resolver looks up videos and playlists on the video platform
type Resolver interface {
	ResolveVideo(ctx context.Context, url string) (platform.Video, error)
	ResolveBest(ctx context.Context, url string) (*model.Source, *model.Option, error)
	ResolveCollection(ctx context.Context, url string) (*model.Collection, error)
}

// Transferer runs one blocking transfer into a local file
type Transferer interface {
	Download(ctx context.Context, req download.Request) (*model.DownloadTask, error)
}

// User is the sender of an update
type User struct {
	ID        int64
	FirstName string
	Username  string
}

// Callback is an inline button tap
type Callback struct {
	ID        string
	Data      string
	MessageID int
	// HasMedia is set when the tapped panel is a photo with a caption
	HasMedia bool
}

// Update is one inbound event, already stripped of transport details
type Update struct {
	ChatID    int64
	Private   bool
	MessageID int
	From      User
	Text      string
	Command   string
	Callback  *Callback
}
