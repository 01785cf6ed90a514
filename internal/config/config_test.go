package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAMLOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
sites: [linkedin, indeed]
keywords: ["Machine Learning Engineer"]
locations: ["Seattle, WA"]
max_pages: 3
delays:
  scroll: {min: 2s, max: 4s}
browser:
  driver: chromedp
credentials_file: `+filepath.Join(dir, "missing.json")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"linkedin", "indeed"}, cfg.Sites)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, 2*time.Second, cfg.Delays.Scroll.Min)
	assert.Equal(t, 4*time.Second, cfg.Delays.Scroll.Max)
	assert.Equal(t, "chromedp", cfg.Browser.Driver)

	// untouched keys keep their defaults
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 5, cfg.Retries.Page)
	assert.Equal(t, 5, cfg.Retries.Control)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "24h", cfg.PostedWithin)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "no keywords", yaml: "locations: [Seattle]\n"},
		{name: "unknown site", yaml: "sites: [monster]\nkeywords: [go]\nlocations: [Seattle]\n"},
		{name: "bad output format", yaml: "keywords: [go]\nlocations: [Seattle]\noutput: {dir: out, format: json}\n"},
		{name: "telegram without token", yaml: "keywords: [go]\nlocations: [Seattle]\ntelegram: {enabled: true}\n"},
		{name: "zero page retries", yaml: "keywords: [go]\nlocations: [Seattle]\nretries: {page: 0, control: 5, search: 5}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "keywords: [go]\nlocations: [Remote]\ncredentials_file: "+filepath.Join(dir, "none.json")+"\n")

	t.Setenv("LINKEDIN_EMAIL", "me@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Email: "me@example.com", Password: "secret"}, cfg.Credentials)
	assert.Equal(t, "token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, "postgres://localhost/jobs", cfg.Database.URL)
}

func TestLoad_InvalidChatID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "keywords: [go]\nlocations: [Remote]\n")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load(path)
	assert.ErrorContains(t, err, "TELEGRAM_CHAT_ID")
}

func TestLoad_CredentialsFile(t *testing.T) {
	dir := t.TempDir()
	creds := writeFile(t, dir, "creds.json", `{"email":"a@b.c","password":"pw"}`)
	path := writeFile(t, dir, "config.yaml", "keywords: [go]\nlocations: [Remote]\ncredentials_file: "+creds+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", cfg.Credentials.Email)
	assert.NoError(t, cfg.CheckCredentials())

	bad := writeFile(t, dir, "bad.json", `{"email":`)
	path = writeFile(t, dir, "config2.yaml", "keywords: [go]\nlocations: [Remote]\ncredentials_file: "+bad+"\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestCheckCredentials(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Sites = []string{"linkedin"}
	cfg.Browser.CookiesPath = dir
	assert.ErrorIs(t, cfg.CheckCredentials(), ErrMissingCredentials)

	writeFile(t, dir, "cookies-linkedin.json", "[]")
	assert.NoError(t, cfg.CheckCredentials())

	cfg.Sites = []string{"indeed"}
	cfg.Browser.CookiesPath = ""
	assert.NoError(t, cfg.CheckCredentials())
}

func TestPostedFilter(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "24h", cfg.PostedFilter())
	cfg.PostedWithin = "any"
	assert.Equal(t, "", cfg.PostedFilter())
}
