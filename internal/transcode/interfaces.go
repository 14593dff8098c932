package transcode

import (
	"context"
	"time"
)

// Transcoder defines the interface for the audio conversion service.
type Transcoder interface {
	Available() bool
	ToMP3(ctx context.Context, inputPath string, duration time.Duration) (string, error)
}

var _ Transcoder = (*Service)(nil)
