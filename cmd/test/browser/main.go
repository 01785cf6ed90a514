package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/logging"
	"go-jobsearch-automation/internal/runner"
	"go-jobsearch-automation/internal/site"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	siteName := flag.String("site", "linkedin", "site whose cookies and origin to use")
	flag.Parse()

	fmt.Println("🌐 Testing browser session...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	profile, err := site.Lookup(*siteName)
	if err != nil {
		log.Fatalf("Unknown site: %v", err)
	}
	logger := logging.New(cfg.Logging)
	ctx := context.Background()

	sessions, closeBrowser, err := runner.BrowserSessions(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start %s: %v", cfg.Browser.Driver, err)
	}
	defer closeBrowser()

	session, err := sessions(ctx, profile.Name)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer session.Close()
	fmt.Printf("✅ %s session opened\n", cfg.Browser.Driver)

	fmt.Printf("🔍 Navigating to %s...\n", profile.Origin)
	if err := session.Navigate(ctx, profile.Origin); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	//check if logged in
	if profile.Login != nil {
		_, ok, err := browser.FindOptional(ctx, session, profile.Login.LoggedInSelector)
		if err != nil {
			log.Fatalf("Lookup failed: %v", err)
		}
		fmt.Printf("✅ Logged in: %t\n", ok)
	}

	dir := cfg.Browser.ScreenshotsDir
	if dir == "" {
		dir = filepath.Join(cfg.Logging.Dir, "screenshots")
	}
	if path := browser.NewScreenshotDebugger(dir, session, logger).CaptureAndLog(ctx, profile.Name+"-test", "Screenshot saved"); path != "" {
		fmt.Printf("📸 Screenshot saved: %s\n", path)
	}
	fmt.Println("✨ Test complete!")
}
