package model

import (
	"context"
	"fmt"
	"io"
	"time"
)

// URL templates
const (
	ChannelURLTemplate = "https://www.youtube.com/channel/%s"
	VideoURLTemplate   = "https://www.youtube.com/watch?v=%s"
)

// OptionKind identifies one of the selectable transfer targets
type OptionKind string

const (
	OptionHigh  OptionKind = "high"
	OptionLow   OptionKind = "low"
	OptionAudio OptionKind = "audio"
)

// File extensions per option kind
const (
	ExtensionVideo = "mp4"
	ExtensionAudio = "mp3"
)

// Extension returns the file extension used for downloads of this kind
func (k OptionKind) Extension() string {
	if k == OptionAudio {
		return ExtensionAudio
	}
	return ExtensionVideo
}

// ProgressFunc receives transferred and total byte counts. Total is zero
// when the platform did not report a length.
type ProgressFunc func(done, total int64)

// TransferFunc streams an option's bytes into w
type TransferFunc func(ctx context.Context, w io.Writer, progress ProgressFunc) error

// Source is a resolved playable item
type Source struct {
	ID           string
	URL          string
	Title        string
	Author       string
	ChannelID    string
	Duration     time.Duration
	ThumbnailURL string
}

// ChannelURL returns the public channel link of the uploader
func (s *Source) ChannelURL() string {
	return fmt.Sprintf(ChannelURLTemplate, s.ChannelID)
}

// DurationSeconds returns the duration rounded down to whole seconds
func (s *Source) DurationSeconds() int {
	return int(s.Duration / time.Second)
}

// Option is a selectable transfer target of a Source
type Option struct {
	Kind     OptionKind
	Label    string // quality label, e.g. "720p" or "medium"
	MimeType string
	Size     int64
	Transfer TransferFunc
}

// Extension returns the file extension for the option
func (o *Option) Extension() string {
	return o.Kind.Extension()
}
