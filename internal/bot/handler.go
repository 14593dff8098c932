package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/session"
	"github.com/ytget/yt-downloader-bot/internal/transcode"
)

// VideoURLPattern classifies single video links
var VideoURLPattern = regexp.MustCompile(`(.*)youtube.com/(.*)[&|?]v=(?P<video>[^&]*)(.*)`)

// Commands
const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandAbout = "about"
)

// Options configures a Handler
type Options struct {
	Caption         string
	ChannelURL      string
	DeveloperURL    string
	FallbackQuality string
	BulkPause       time.Duration
	TranscodeMP3    bool
}

// Handler routes updates to the command, video, callback and playlist flows
type Handler struct {
	messenger  Messenger
	resolver   Resolver
	downloads  Transferer
	transcoder transcode.Transcoder
	sessions   *session.Store
	opts       Options
	logger     *slog.Logger
}

// NewHandler creates a handler
func NewHandler(messenger Messenger, resolver Resolver, downloads Transferer, sessions *session.Store, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		sessions = session.NewStore()
	}
	if opts.FallbackQuality == "" {
		opts.FallbackQuality = "360p"
	}
	return &Handler{
		messenger: messenger,
		resolver:  resolver,
		downloads: downloads,
		sessions:  sessions,
		opts:      opts,
		logger:    logger,
	}
}

// SetTranscoder enables MP3 conversion of audio before it is sent
func (h *Handler) SetTranscoder(t transcode.Transcoder) {
	h.transcoder = t
}

// Handle processes one update. It never panics out.
func (h *Handler) Handle(ctx context.Context, u Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("handler_panic", "chat_id", u.ChatID, "panic", fmt.Sprint(r))
		}
	}()

	switch {
	case u.Callback != nil:
		h.handleCallback(ctx, u)
	case u.Command != "":
		h.handleCommand(ctx, u)
	case VideoURLPattern.MatchString(u.Text):
		h.handleVideoURL(ctx, u)
	case u.Private && strings.TrimSpace(u.Text) != "":
		h.handleCollection(ctx, u)
	}
}

func (h *Handler) handleCommand(ctx context.Context, u Update) {
	var panel Panel
	switch u.Command {
	case CommandStart:
		panel = h.startPanel(u.From)
	case CommandHelp:
		panel = h.helpPanel()
	case CommandAbout:
		panel = h.aboutPanel()
	default:
		return
	}
	if err := h.messenger.SendPanel(ctx, u.ChatID, panel); err != nil {
		h.logger.Warn("send_panel_failed", "chat_id", u.ChatID, "command", u.Command, "err", err)
	}
}

// handleVideoURL resolves a single video, stores its options and shows the menu
func (h *Handler) handleVideoURL(ctx context.Context, u Update) {
	url := strings.TrimSpace(u.Text)
	rec, err := h.resolveRecord(ctx, url)
	if err != nil {
		h.logger.Warn("resolve_failed", "chat_id", u.ChatID, "url", url, "err", err)
		h.sendText(ctx, u.ChatID, TextFetchFailed)
		return
	}

	h.sessions.Put(u.ChatID, rec)
	h.logger.Info("selection_state",
		"chat_id", u.ChatID,
		"state", model.SelectionAwaitingChoice,
		"title", rec.Source.Title,
	)

	kb := mediaKeyboard(rec.High, rec.Low, rec.Audio)
	caption := menuCaption(rec.Source)
	if rec.Source.ThumbnailURL == "" {
		err = h.messenger.SendPanel(ctx, u.ChatID, Panel{Text: caption, Keyboard: kb})
	} else {
		err = h.messenger.SendPhotoURL(ctx, u.ChatID, rec.Source.ThumbnailURL, caption, kb)
	}
	if err != nil {
		h.logger.Warn("send_menu_failed", "chat_id", u.ChatID, "err", err)
	}
}

// resolveRecord fetches the video and derives all three options. Any
// missing option fails the whole resolution.
func (h *Handler) resolveRecord(ctx context.Context, url string) (*session.Record, error) {
	video, err := h.resolver.ResolveVideo(ctx, url)
	if err != nil {
		return nil, err
	}
	high, err := video.Highest()
	if err != nil {
		return nil, fmt.Errorf("highest option: %w", err)
	}
	low, err := video.ByQuality(h.opts.FallbackQuality)
	if err != nil {
		return nil, fmt.Errorf("%s option: %w", h.opts.FallbackQuality, err)
	}
	audio, err := video.AudioOnly()
	if err != nil {
		return nil, fmt.Errorf("audio option: %w", err)
	}
	return &session.Record{
		Source: video.Source(),
		High:   high,
		Low:    low,
		Audio:  audio,
	}, nil
}

// handleCallback drives the selection state machine for one button tap
func (h *Handler) handleCallback(ctx context.Context, u Update) {
	cb := u.Callback
	defer func() {
		if err := h.messenger.AnswerCallback(ctx, cb.ID); err != nil {
			h.logger.Debug("answer_callback_failed", "chat_id", u.ChatID, "err", err)
		}
	}()

	action := ParseAction(cb.Data)
	switch {
	case action.IsMedia():
		h.handleMedia(ctx, u, action)
	case action.IsNavigation():
		h.editPanel(ctx, u, h.navigationPanel(action, u.From))
	default:
		h.deleteMenu(ctx, u)
	}
}

// navigationPanel returns the panel a navigation tag switches to
func (h *Handler) navigationPanel(action Action, from User) Panel {
	switch action {
	case ActionHelp:
		return h.helpPanel()
	case ActionAbout:
		return h.aboutPanel()
	default:
		return h.startPanel(from)
	}
}

func (h *Handler) handleMedia(ctx context.Context, u Update, action Action) {
	rec, err := h.sessions.Get(u.ChatID)
	if err != nil {
		h.logger.Info("selection_without_session", "chat_id", u.ChatID, "action", action)
		h.deleteMenu(ctx, u)
		return
	}

	state := model.SelectionAwaitingChoice
	if err := h.deliver(ctx, u.ChatID, rec, action, &state); err != nil {
		h.transition(u.ChatID, &state, model.SelectionFailed)
		h.logger.Warn("delivery_failed", "chat_id", u.ChatID, "action", action, "err", err)
		h.sendText(ctx, u.ChatID, TextSendFailed)
		return
	}
	h.transition(u.ChatID, &state, model.SelectionDelivered)
}

// deliver sends the selected media. It returns the first error met.
func (h *Handler) deliver(ctx context.Context, chatID int64, rec *session.Record, action Action, state *model.SelectionState) error {
	src := rec.Source
	if action == ActionThumbnail {
		if src.ThumbnailURL == "" {
			return errors.New("video has no thumbnail")
		}
		return h.messenger.SendPhotoURL(ctx, chatID, src.ThumbnailURL, h.opts.Caption, nil)
	}

	kind := optionKindFor(action)
	opt := rec.Option(kind)
	if opt == nil {
		return fmt.Errorf("no %s option stored", kind)
	}

	h.transition(chatID, state, model.SelectionTransferring)
	task, err := h.downloads.Download(ctx, download.Request{
		ChatID: chatID,
		Title:  src.Title,
		Option: opt,
	})
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	if kind != model.OptionAudio {
		return h.messenger.SendVideo(ctx, chatID, task.OutputPath, h.opts.Caption)
	}
	return h.messenger.SendAudio(ctx, chatID, h.maybeTranscode(ctx, task.OutputPath, src.Duration), h.opts.Caption, src.DurationSeconds())
}

// maybeTranscode converts audio to MP3 when enabled; on failure the
// original file is sent.
func (h *Handler) maybeTranscode(ctx context.Context, path string, duration time.Duration) string {
	if !h.opts.TranscodeMP3 || h.transcoder == nil || !h.transcoder.Available() {
		return path
	}
	out, err := h.transcoder.ToMP3(ctx, path, duration)
	if err != nil {
		h.logger.Warn("transcode_failed", "path", path, "err", err)
		return path
	}
	return out
}

func (h *Handler) transition(chatID int64, state *model.SelectionState, next model.SelectionState) {
	if !state.CanTransition(next) {
		h.logger.Debug("selection_transition_skipped", "chat_id", chatID, "from", *state, "to", next)
		return
	}
	*state = next
	h.logger.Info("selection_state", "chat_id", chatID, "state", next)
}

func optionKindFor(action Action) model.OptionKind {
	switch action {
	case ActionLow:
		return model.OptionLow
	case ActionAudio:
		return model.OptionAudio
	default:
		return model.OptionHigh
	}
}

func (h *Handler) editPanel(ctx context.Context, u Update, panel Panel) {
	if err := h.messenger.EditPanel(ctx, u.ChatID, u.Callback.MessageID, panel, u.Callback.HasMedia); err != nil {
		h.logger.Warn("edit_panel_failed", "chat_id", u.ChatID, "err", err)
	}
}

func (h *Handler) deleteMenu(ctx context.Context, u Update) {
	if err := h.messenger.DeleteMessage(ctx, u.ChatID, u.Callback.MessageID); err != nil {
		h.logger.Debug("delete_menu_failed", "chat_id", u.ChatID, "err", err)
	}
}

func (h *Handler) sendText(ctx context.Context, chatID int64, text string) {
	if err := h.messenger.SendText(ctx, chatID, text); err != nil {
		h.logger.Warn("send_text_failed", "chat_id", chatID, "err", err)
	}
}
