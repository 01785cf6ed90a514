package main

import (
	"flag"
	"fmt"
	"log"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	siteName := flag.String("site", "linkedin", "site whose cookie export to read")
	flag.Parse()

	fmt.Println("🍪 Testing cookie loading...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	path := cfg.CookieFile(*siteName)
	cookies, err := browser.LoadCookies(path)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}

	fmt.Printf("✅ Loaded %d cookies from %s\n", len(cookies), path)

	//print first cookie as example
	if len(cookies) > 0 {
		c := cookies[0]
		fmt.Printf("\nExample cookie:\n")
		fmt.Printf("Name: %s\n", c.Name)
		fmt.Printf("Domain: %s\n", c.Domain)
		fmt.Printf("Secure: %t\n", c.Secure)
	}
}
