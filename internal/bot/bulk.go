package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
)

// handleCollection downloads every playlist item in order. A failed item is
// reported and skipped; the run continues with the next one.
func (h *Handler) handleCollection(ctx context.Context, u Update) {
	url := strings.TrimSpace(u.Text)
	coll, err := h.resolver.ResolveCollection(ctx, url)
	if err != nil {
		h.logger.Info("collection_resolve_failed", "chat_id", u.ChatID, "url", url, "err", err)
		h.sendText(ctx, u.ChatID, TextInvalidPlaylist)
		return
	}

	h.logger.Info("collection_start", "chat_id", u.ChatID, "title", coll.Title, "items", coll.Len())

	limiter := h.newPauseLimiter()
	for _, item := range coll.Items {
		if err := h.deliverItem(ctx, u.ChatID, coll.Title, item); err != nil {
			coll.MarkFailed(item, err)
			h.logger.Warn("collection_item_failed", "chat_id", u.ChatID, "item", item.ID, "err", err)
			h.sendText(ctx, u.ChatID, itemFailedText(item.Title))
		} else {
			coll.MarkDelivered(item)
		}

		if err := limiter.Wait(ctx); err != nil {
			h.logger.Info("collection_cancelled", "chat_id", u.ChatID, "remaining", len(coll.Pending()), "err", err)
			return
		}
	}

	level := slog.LevelInfo
	if coll.HasErrors() {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "collection_done",
		"chat_id", u.ChatID,
		"title", coll.Title,
		"delivered", coll.Delivered,
		"failed", coll.Failed,
	)
}

// newPauseLimiter returns a limiter whose next token arrives one pause from now
func (h *Handler) newPauseLimiter() *rate.Limiter {
	if h.opts.BulkPause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	limiter := rate.NewLimiter(rate.Every(h.opts.BulkPause), 1)
	limiter.Allow()
	return limiter
}

func (h *Handler) deliverItem(ctx context.Context, chatID int64, collTitle string, item *model.CollectionItem) error {
	src, opt, err := h.resolver.ResolveBest(ctx, item.URL)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	title := item.Title
	if src != nil && src.Title != "" {
		title = src.Title
	}

	task, err := h.downloads.Download(ctx, download.Request{
		ChatID: chatID,
		Title:  title,
		Option: opt,
	})
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	if err := h.messenger.SendVideo(ctx, chatID, task.OutputPath, playlistCaption(collTitle, h.opts.Caption)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}
