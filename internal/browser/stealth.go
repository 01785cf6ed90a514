package browser

import (
	"context"
	"math/rand"

	"github.com/playwright-community/playwright-go"

	"go-jobsearch-automation/internal/stealth"
)

var (
	scrollStep  = stealth.Millis(500, 1500)
	jiggleStep  = stealth.Millis(100, 300)
	humanPauser = stealth.RandomPauser{}
)

// Humanizer is implemented by sessions that can fake idle reading behaviour.
type Humanizer interface {
	Humanize(ctx context.Context) error
}

// HumanScroll simulates human-like scrolling behavior
func HumanScroll(ctx context.Context, page playwright.Page) error {
	// Scroll down in steps
	for i := 0; i < 5; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		if err := humanPauser.Pause(ctx, scrollStep); err != nil {
			return err
		}
	}
	// Scroll back up a bit (random behavior)
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}

// MouseJiggle simulates random mouse movements to prevent idle detection
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	viewportSize := page.ViewportSize()
	if viewportSize == nil {
		return nil
	}
	for i := 0; i < 3; i++ {
		x := rand.Intn(viewportSize.Width)
		y := rand.Intn(viewportSize.Height)
		if err := page.Mouse().Move(float64(x), float64(y)); err != nil {
			return err
		}
		if err := humanPauser.Pause(ctx, jiggleStep); err != nil {
			return err
		}
	}
	return nil
}
