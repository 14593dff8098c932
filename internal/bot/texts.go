package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ytget/yt-downloader-bot/internal/format"
	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Icons (emojis/symbols)
const (
	IconVideo    = "🎬"
	IconAudio    = "🎧"
	IconBullet   = "⭕️"
	IconUploader = "📤"
	IconChannel  = "📢"
	IconError    = "❌"
	IconWarning  = "⚠"
)

// Button labels
const (
	ButtonChannel   = "📢CHANNEL📢"
	ButtonDeveloper = "🧑🏼‍💻DEV🧑🏼‍💻"
	ButtonHelp      = "🆘HELP🆘"
	ButtonAbout     = "🤗ABOUT🤗"
	ButtonClose     = "🔐CLOSE🔐"
	ButtonThumbnail = "🖼THUMBNAIL🖼"
)

// User facing messages
const (
	TextFetchFailed     = "❌ Failed to fetch YouTube video."
	TextSendFailed      = "❌ Error sending file, maybe file is too large."
	TextInvalidPlaylist = "❌ Invalid playlist URL."
	TextItemFailed      = "⚠ Failed to download %s"
)

// Panel texts, Telegram Markdown
const (
	StartTextFormat = "Hi %s,\n*I am an Advanced YouTube Downloader Bot.\nI can download videos, audio, thumbnails, and playlists.\nMade by @TELSABOTS*"
	HelpText        = "*Send any YouTube URL and select quality.\nSupports playlists too.*"
	AboutText       = "*Bot: YouTube Downloader\nDeveloper: @ALLUADDICT\nLanguage: Go\nLibrary: telegram-bot-api*"
)

// Fallback labels for options without a quality label
const (
	DefaultHighLabel = "HD"
	DefaultLowLabel  = "360P"
)

// Button is one inline keyboard button, either a callback or a link
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is a list of button rows
type Keyboard [][]Button

// Panel is a Markdown message with an optional keyboard
type Panel struct {
	Text     string
	Keyboard Keyboard
}

// Mention renders a Markdown link to the user
func Mention(u User) string {
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = "there"
	}
	if u.ID == 0 {
		return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, name)
	}
	return fmt.Sprintf("[%s](tg://user?id=%d)", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, name), u.ID)
}

// startKeyboard returns the channel, developer, help, about and close buttons
func (h *Handler) startKeyboard() Keyboard {
	var links []Button
	if h.opts.ChannelURL != "" {
		links = append(links, Button{Text: ButtonChannel, URL: h.opts.ChannelURL})
	}
	if h.opts.DeveloperURL != "" {
		links = append(links, Button{Text: ButtonDeveloper, URL: h.opts.DeveloperURL})
	}

	kb := Keyboard{}
	if len(links) > 0 {
		kb = append(kb, links)
	}
	return append(kb, []Button{
		{Text: ButtonHelp, Data: TagHelp},
		{Text: ButtonAbout, Data: TagAbout},
		{Text: ButtonClose, Data: TagClose},
	})
}

func (h *Handler) startPanel(u User) Panel {
	return Panel{Text: fmt.Sprintf(StartTextFormat, Mention(u)), Keyboard: h.startKeyboard()}
}

func (h *Handler) helpPanel() Panel {
	return Panel{Text: HelpText, Keyboard: h.startKeyboard()}
}

func (h *Handler) aboutPanel() Panel {
	return Panel{Text: AboutText, Keyboard: h.startKeyboard()}
}

// menuCaption is the caption of the quality menu photo
func menuCaption(src *model.Source) string {
	return fmt.Sprintf("%s %s\n%s Uploaded by: %s\n%s Channel: %s",
		IconVideo, src.Title,
		IconUploader, src.Author,
		IconChannel, src.ChannelURL())
}

// mediaKeyboard builds the four option buttons with formatted sizes
func mediaKeyboard(high, low, audio *model.Option) Keyboard {
	return Keyboard{
		{
			{Text: optionButtonText(IconVideo, high, DefaultHighLabel), Data: TagHigh},
			{Text: optionButtonText(IconVideo, low, DefaultLowLabel), Data: TagLow},
		},
		{
			{Text: optionButtonText(IconAudio, audio, "AUDIO"), Data: TagAudio},
		},
		{
			{Text: ButtonThumbnail, Data: TagThumbnail},
		},
	}
}

func optionButtonText(icon string, opt *model.Option, fallback string) string {
	label := fallback
	if opt.Kind == model.OptionAudio {
		label = "AUDIO"
	} else if opt.Label != "" {
		label = strings.ToUpper(opt.Label)
	}
	text := icon + label
	if size := format.Bytes(opt.Size); size != "" {
		text += " " + IconBullet + " " + size
	}
	return text
}

// playlistCaption prefixes the promo caption with the collection title
func playlistCaption(title, caption string) string {
	return fmt.Sprintf("%s Playlist: %s\n%s", IconBullet, title, caption)
}

// itemFailedText is the per-item warning of a playlist run
func itemFailedText(title string) string {
	return fmt.Sprintf(TextItemFailed, title)
}
