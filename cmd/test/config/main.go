package main

import (
	"flag"
	"fmt"
	"log"

	"go-jobsearch-automation/internal/config"
)

func mask(s string) string {
	if len(s) <= 10 {
		return "***"
	}
	return s[:10] + "..."
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Sites: %v\n", cfg.Sites)
	fmt.Printf("   Keywords: %v\n", cfg.Keywords)
	fmt.Printf("   Locations: %v\n", cfg.Locations)
	fmt.Printf("   Posted within: %q, max pages: %d\n", cfg.PostedWithin, cfg.MaxPages)
	fmt.Printf("   Output: %s (%s)\n", cfg.Output.Dir, cfg.Output.Format)
	fmt.Printf("   Browser: %s, headless=%t\n", cfg.Browser.Driver, cfg.Browser.Headless)
	fmt.Printf("   Credentials: %t\n", !cfg.Credentials.Empty())
	if cfg.Telegram.Enabled {
		fmt.Printf("   Telegram Token: %s\n", mask(cfg.Telegram.Token))
		fmt.Printf("   Telegram Chat ID: %d\n", cfg.Telegram.ChatID)
	}
	if err := cfg.CheckCredentials(); err != nil {
		fmt.Printf("⚠️ %v\n", err)
	}
}
