package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
)

// sent is one recorded outbound call
type sent struct {
	Kind     string
	ChatID   int64
	Text     string
	Path     string
	Duration int
	Keyboard Keyboard
	HasMedia bool
}

type fakeMessenger struct {
	mu        sync.Mutex
	calls     []sent
	answered  []string
	failVideo bool
}

func (m *fakeMessenger) record(s sent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, s)
}

func (m *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	m.record(sent{Kind: "text", ChatID: chatID, Text: text})
	return nil
}

func (m *fakeMessenger) SendPanel(ctx context.Context, chatID int64, panel Panel) error {
	m.record(sent{Kind: "panel", ChatID: chatID, Text: panel.Text, Keyboard: panel.Keyboard})
	return nil
}

func (m *fakeMessenger) SendPhotoURL(ctx context.Context, chatID int64, photoURL, caption string, kb Keyboard) error {
	m.record(sent{Kind: "photo", ChatID: chatID, Text: caption, Path: photoURL, Keyboard: kb})
	return nil
}

func (m *fakeMessenger) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	if m.failVideo {
		return errors.New("request entity too large")
	}
	m.record(sent{Kind: "video", ChatID: chatID, Text: caption, Path: path})
	return nil
}

func (m *fakeMessenger) SendAudio(ctx context.Context, chatID int64, path, caption string, durationSeconds int) error {
	m.record(sent{Kind: "audio", ChatID: chatID, Text: caption, Path: path, Duration: durationSeconds})
	return nil
}

func (m *fakeMessenger) EditPanel(ctx context.Context, chatID int64, messageID int, panel Panel, hasMedia bool) error {
	m.record(sent{Kind: "edit", ChatID: chatID, Text: panel.Text, Keyboard: panel.Keyboard, HasMedia: hasMedia})
	return nil
}

func (m *fakeMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.record(sent{Kind: "delete", ChatID: chatID})
	return nil
}

func (m *fakeMessenger) AnswerCallback(ctx context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, callbackID)
	return nil
}

func (m *fakeMessenger) Calls() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.calls...)
}

func (m *fakeMessenger) kinds() []string {
	var out []string
	for _, c := range m.Calls() {
		out = append(out, c.Kind)
	}
	return out
}

// fakeVideo is a resolved video with configurable options
type fakeVideo struct {
	source *model.Source
	high   *model.Option
	low    *model.Option
	audio  *model.Option
}

func (v *fakeVideo) Source() *model.Source { return v.source }

func (v *fakeVideo) Highest() (*model.Option, error) {
	if v.high == nil {
		return nil, platform.ErrNoOption
	}
	return v.high, nil
}

func (v *fakeVideo) ByQuality(label string) (*model.Option, error) {
	if v.low == nil {
		return nil, fmt.Errorf("%s: %w", label, platform.ErrNoOption)
	}
	return v.low, nil
}

func (v *fakeVideo) AudioOnly() (*model.Option, error) {
	if v.audio == nil {
		return nil, platform.ErrNoOption
	}
	return v.audio, nil
}

type fakeResolver struct {
	mu          sync.Mutex
	videos      map[string]*fakeVideo
	collections map[string]*model.Collection
	transfers   int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		videos:      make(map[string]*fakeVideo),
		collections: make(map[string]*model.Collection),
	}
}

func (r *fakeResolver) ResolveVideo(ctx context.Context, url string) (platform.Video, error) {
	v, ok := r.videos[url]
	if !ok {
		return nil, errors.New("video unavailable")
	}
	return v, nil
}

func (r *fakeResolver) ResolveBest(ctx context.Context, url string) (*model.Source, *model.Option, error) {
	v, ok := r.videos[url]
	if !ok {
		return nil, nil, errors.New("video unavailable")
	}
	opt, err := v.Highest()
	if err != nil {
		return nil, nil, err
	}
	return v.source, opt, nil
}

func (r *fakeResolver) ResolveCollection(ctx context.Context, url string) (*model.Collection, error) {
	c, ok := r.collections[url]
	if !ok {
		return nil, platform.ErrInvalidURL
	}
	return c, nil
}

// option returns an option whose transfer writes payload and counts itself
func (r *fakeResolver) option(kind model.OptionKind, label, payload string) *model.Option {
	return &model.Option{
		Kind:  kind,
		Label: label,
		Size:  int64(len(payload)),
		Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
			r.mu.Lock()
			r.transfers++
			r.mu.Unlock()
			_, err := io.WriteString(w, payload)
			return err
		},
	}
}

func (r *fakeResolver) Transfers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transfers
}

// failingOption returns an option whose transfer always fails
func failingOption(kind model.OptionKind) *model.Option {
	return &model.Option{
		Kind: kind,
		Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
			return errors.New("stream forbidden")
		},
	}
}
