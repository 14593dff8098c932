package download

import (
	"context"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.DownloadTask))
	Download(ctx context.Context, req Request) (*model.DownloadTask, error)
	GetAllTasks() []*model.DownloadTask
	ActiveCount() int
	DownloadDir() string
}

// Request describes one transfer of an option into a local file
type Request struct {
	ChatID int64
	Title  string
	Option *model.Option
}

var _ Downloader = (*Service)(nil)
