package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMessenger implements Messenger over the Bot API
type TelegramMessenger struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewTelegramMessenger wraps an authorized bot API client
func NewTelegramMessenger(api *tgbotapi.BotAPI, logger *slog.Logger) *TelegramMessenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramMessenger{api: api, logger: logger}
}

// SendText sends a plain text message
func (m *TelegramMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendPanel sends a Markdown message with its keyboard
func (m *TelegramMessenger) SendPanel(ctx context.Context, chatID int64, panel Panel) error {
	msg := tgbotapi.NewMessage(chatID, panel.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if markup, ok := inlineMarkup(panel.Keyboard); ok {
		msg.ReplyMarkup = markup
	}
	return m.send(ctx, msg)
}

// SendPhotoURL sends a photo Telegram fetches from photoURL
func (m *TelegramMessenger) SendPhotoURL(ctx context.Context, chatID int64, photoURL, caption string, kb Keyboard) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	photo.Caption = caption
	if markup, ok := inlineMarkup(kb); ok {
		photo.ReplyMarkup = markup
	}
	return m.send(ctx, photo)
}

// SendVideo uploads a local video file
func (m *TelegramMessenger) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.SupportsStreaming = true
	return m.send(ctx, video)
}

// SendAudio uploads a local audio file with its duration in seconds
func (m *TelegramMessenger) SendAudio(ctx context.Context, chatID int64, path, caption string, durationSeconds int) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Caption = caption
	audio.Duration = durationSeconds
	return m.send(ctx, audio)
}

// EditPanel replaces the panel in place. Photo panels get their caption edited.
func (m *TelegramMessenger) EditPanel(ctx context.Context, chatID int64, messageID int, panel Panel, hasMedia bool) error {
	markup, _ := inlineMarkup(panel.Keyboard)
	if hasMedia {
		edit := tgbotapi.NewEditMessageCaption(chatID, messageID, panel.Text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		edit.ReplyMarkup = &markup
		return m.request(ctx, edit)
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, panel.Text, markup)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = true
	return m.request(ctx, edit)
}

// DeleteMessage removes a message
func (m *TelegramMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return m.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID))
}

// AnswerCallback stops the client side spinner of a button tap
func (m *TelegramMessenger) AnswerCallback(ctx context.Context, callbackID string) error {
	return m.request(ctx, tgbotapi.NewCallback(callbackID, ""))
}

func (m *TelegramMessenger) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.Send(c); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (m *TelegramMessenger) request(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.Request(c); err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	return nil
}

// inlineMarkup converts a Keyboard; ok is false for an empty keyboard
func inlineMarkup(kb Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(kb) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// ConvertUpdate maps a Bot API update onto an Update; ok is false for
// updates the bot does not handle.
func ConvertUpdate(upd tgbotapi.Update) (Update, bool) {
	if cq := upd.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.Message.Chat == nil {
			return Update{}, false
		}
		msg := cq.Message
		return Update{
			ChatID:    msg.Chat.ID,
			Private:   msg.Chat.IsPrivate(),
			MessageID: msg.MessageID,
			From:      convertUser(cq.From),
			Callback: &Callback{
				ID:        cq.ID,
				Data:      cq.Data,
				MessageID: msg.MessageID,
				HasMedia:  len(msg.Photo) > 0 || msg.Video != nil || msg.Caption != "",
			},
		}, true
	}

	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return Update{}, false
	}
	u := Update{
		ChatID:    msg.Chat.ID,
		Private:   msg.Chat.IsPrivate(),
		MessageID: msg.MessageID,
		From:      convertUser(msg.From),
		Text:      msg.Text,
	}
	if msg.IsCommand() {
		u.Command = strings.ToLower(msg.Command())
	}
	if u.Command == "" && strings.TrimSpace(u.Text) == "" {
		return Update{}, false
	}
	return u, true
}

func convertUser(u *tgbotapi.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, FirstName: u.FirstName, Username: u.UserName}
}

// Poll long-polls the Bot API and dispatches updates until ctx is done
func Poll(ctx context.Context, api *tgbotapi.BotAPI, timeout int, d *Dispatcher, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := api.GetUpdatesChan(cfg)
	defer api.StopReceivingUpdates()

	logger.Info("telegram_polling", "bot", api.Self.UserName, "timeout", timeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			u, ok := ConvertUpdate(upd)
			if !ok {
				continue
			}
			if err := d.Dispatch(u); errors.Is(err, ErrChatBusy) {
				logger.Warn("chat_busy_update_dropped", "chat_id", u.ChatID, "update_id", upd.UpdateID)
			} else if err != nil {
				logger.Warn("dispatch_failed", "chat_id", u.ChatID, "update_id", upd.UpdateID, "err", err)
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		}
	}
}
