package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func summary() models.RunSummary {
	start := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	return models.RunSummary{
		Site:           "linkedin",
		Keywords:       "Data Scientist",
		Location:       "Seattle, WA",
		OutputPath:     "data/output/20240131H09_linkedin_sw_ds.csv",
		PagesProcessed: []int{1, 2, 3},
		PagesSkipped:   []int{4},
		Records:        57,
		Applications:   map[string]int{"SUBMITTED": 2, "DISCARDED": 1},
		Tags:           map[string]int{"senior": 4},
		StartedAt:      start,
		FinishedAt:     start.Add(12*time.Minute + 400*time.Millisecond),
	}
}

func TestFormatSummary(t *testing.T) {
	text := FormatSummary(summary())

	assert.Contains(t, text, "✅ *linkedin* search finished")
	assert.Contains(t, text, "📍 Seattle, WA")
	assert.Contains(t, text, "📄 Pages: 3 saved, 1 skipped")
	assert.Contains(t, text, "🗂 Jobs saved: 57")
	assert.Contains(t, text, "📨 Easy Apply: DISCARDED: 1, SUBMITTED: 2")
	assert.Contains(t, text, "🏷 Labels: senior: 4")
	assert.Contains(t, text, "20240131H09\\_linkedin\\_sw\\_ds\\.csv")
	assert.Contains(t, text, "⏱ 12m0s")
	assert.NotContains(t, text, "❌")
}

func TestFormatSummary_Error(t *testing.T) {
	s := summary()
	s.Keywords = ""
	s.Err = "context canceled"
	text := FormatSummary(s)

	assert.Contains(t, text, "⚠️ *linkedin*")
	assert.Contains(t, text, "🔎 any")
	assert.Contains(t, text, "❌ context canceled")
}

func TestBot_SendRunSummary(t *testing.T) {
	api := &fakeSender{}
	b := newBot(api, 42, 0, arbor.NewLogger())

	require.NoError(t, b.SendRunSummary(context.Background(), summary()))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Equal(t, "MarkdownV2", api.sent[0].ParseMode)

	api.err = errors.New("chat not found")
	assert.ErrorContains(t, b.SendRunSummary(context.Background(), summary()), "chat not found")
}

func TestBot_RateLimited(t *testing.T) {
	api := &fakeSender{}
	b := newBot(api, 1, time.Hour, arbor.NewLogger())

	require.NoError(t, b.SendStatus(context.Background(), "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, b.SendStatus(ctx, "second"))
	assert.Len(t, api.sent, 1)
}
