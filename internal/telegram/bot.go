package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"go-jobsearch-automation/internal/models"
)

// Sender is the part of tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     Sender
	chatID  int64
	limiter *rate.Limiter
	logger  arbor.ILogger
}

func NewBot(token string, chatID int64, minInterval time.Duration, logger arbor.ILogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newBot(api, chatID, minInterval, logger), nil
}

func newBot(api Sender, chatID int64, minInterval time.Duration, logger arbor.ILogger) *Bot {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Bot{
		api:     api,
		chatID:  chatID,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// FormatSummary renders a run summary as a MarkdownV2 message.
func FormatSummary(s models.RunSummary) string {
	var b strings.Builder
	icon := "✅"
	if s.Err != "" {
		icon = "⚠️"
	}
	fmt.Fprintf(&b, "%s *%s* search finished\n", icon, escapeMarkdown(s.Site))
	fmt.Fprintf(&b, "🔎 %s\n", escapeMarkdown(orAny(s.Keywords)))
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(orAny(s.Location)))
	fmt.Fprintf(&b, "📄 Pages: %d saved, %d skipped\n", len(s.PagesProcessed), len(s.PagesSkipped))
	fmt.Fprintf(&b, "🗂 Jobs saved: %d\n", s.Records)
	if line := counts(s.Applications); line != "" {
		fmt.Fprintf(&b, "📨 Easy Apply: %s\n", escapeMarkdown(line))
	}
	if line := counts(s.Tags); line != "" {
		fmt.Fprintf(&b, "🏷 Labels: %s\n", escapeMarkdown(line))
	}
	if s.OutputPath != "" {
		fmt.Fprintf(&b, "💾 `%s`\n", escapeMarkdown(s.OutputPath))
	}
	if d := s.Duration(); d > 0 {
		fmt.Fprintf(&b, "⏱ %s\n", escapeMarkdown(d.Round(time.Second).String()))
	}
	if s.Err != "" {
		fmt.Fprintf(&b, "❌ %s\n", escapeMarkdown(s.Err))
	}
	return b.String()
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

// counts renders a map as "a: 1, b: 2" in key order.
func counts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendRunSummary(ctx context.Context, s models.RunSummary) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatSummary(s))
	msg.ParseMode = "MarkdownV2"
	if err := b.send(ctx, msg); err != nil {
		return fmt.Errorf("send run summary: %w", err)
	}
	b.logger.Debug().Str("site", s.Site).Msg("Sent run summary")
	return nil
}

func (b *Bot) SendError(ctx context.Context, err error) error {
	return b.send(ctx, tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err)))
}

func (b *Bot) SendStatus(ctx context.Context, message string) error {
	return b.send(ctx, tgbotapi.NewMessage(b.chatID, "ℹ️ "+message))
}
