package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/ternarybob/arbor"
)

type Options struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
}

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  arbor.ILogger
}

func NewPlaywright(ctx context.Context, opts Options, logger arbor.ILogger) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	logger.Info().Bool("headless", opts.Headless).Msg("Playwright chromium launched")
	return &PlaywrightManager{pw: pw, browser: browser, opts: opts, logger: logger}, nil
}

func (pm *PlaywrightManager) NewContext(cookies []Cookie) (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}
	if pm.opts.Width > 0 && pm.opts.Height > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: pm.opts.Width, Height: pm.opts.Height}
	}

	browserCtx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		pwCookies := make([]playwright.OptionalCookie, len(cookies))
		for i, c := range cookies {
			pwCookies[i] = c.ToPlaywright()
		}
		if err := browserCtx.AddCookies(pwCookies); err != nil {
			browserCtx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return browserCtx, nil
}

// NewSession opens a fresh page in a new context carrying cookies.
func (pm *PlaywrightManager) NewSession(cookies []Cookie) (*PlaywrightSession, error) {
	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		return nil, err
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &PlaywrightSession{page: page, browserCtx: browserCtx, logger: pm.logger}, nil
}

func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.browser != nil {
		errs = append(errs, pm.browser.Close())
	}
	if pm.pw != nil {
		errs = append(errs, pm.pw.Stop())
	}
	return errors.Join(errs...)
}

// PlaywrightSession drives a single playwright page.
type PlaywrightSession struct {
	renderEpoch
	page       playwright.Page
	browserCtx playwright.BrowserContext
	logger     arbor.ILogger
}

// Page exposes the underlying page for playwright-only helpers.
func (s *PlaywrightSession) Page() playwright.Page { return s.page }

func (s *PlaywrightSession) handle(el Element) (playwright.ElementHandle, error) {
	if err := s.check(el); err != nil {
		return nil, err
	}
	h, ok := el.Ref().(playwright.ElementHandle)
	if !ok {
		return nil, fmt.Errorf("element is not a playwright handle: %T", el.Ref())
	}
	return h, nil
}

func (s *PlaywrightSession) FindElement(ctx context.Context, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return Element{}, err
	}
	h, err := s.page.QuerySelector(selector)
	if err != nil {
		return Element{}, fmt.Errorf("query %q: %w", selector, err)
	}
	if h == nil {
		return Element{}, ErrNotFound
	}
	return s.wrap(h), nil
}

func (s *PlaywrightSession) FindAllElements(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %q: %w", selector, err)
	}
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, s.wrap(h))
	}
	return out, nil
}

func (s *PlaywrightSession) Attribute(ctx context.Context, el Element, name string) (string, error) {
	h, err := s.handle(el)
	if err != nil {
		return "", err
	}
	v, err := h.GetAttribute(name)
	return v, translatePlaywrightErr(err)
}

func (s *PlaywrightSession) Text(ctx context.Context, el Element) (string, error) {
	h, err := s.handle(el)
	if err != nil {
		return "", err
	}
	v, err := h.InnerText()
	return v, translatePlaywrightErr(err)
}

func (s *PlaywrightSession) Activate(ctx context.Context, el Element) error {
	h, err := s.handle(el)
	if err != nil {
		return err
	}
	err = h.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(5000),
	})
	if err == nil {
		return nil
	}
	if !clickIntercepted(err) {
		return translatePlaywrightErr(err)
	}

	s.logger.Debug().Err(err).Msg("Pointer click intercepted, using programmatic click")
	_, err = h.Evaluate("el => el.click()")
	return translatePlaywrightErr(err)
}

func (s *PlaywrightSession) ScrollIntoView(ctx context.Context, el Element) error {
	h, err := s.handle(el)
	if err != nil {
		return err
	}
	_, err = h.Evaluate("el => el.scrollIntoView()")
	return translatePlaywrightErr(err)
}

func (s *PlaywrightSession) PageMarkup(ctx context.Context) (string, error) {
	return s.page.Content()
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	defer s.Invalidate()
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *PlaywrightSession) CurrentURL(ctx context.Context) (string, error) {
	return s.page.URL(), nil
}

func (s *PlaywrightSession) Fill(ctx context.Context, el Element, text string) error {
	h, err := s.handle(el)
	if err != nil {
		return err
	}
	return translatePlaywrightErr(h.Fill(text))
}

func (s *PlaywrightSession) Press(ctx context.Context, el Element, key string) error {
	h, err := s.handle(el)
	if err != nil {
		return err
	}
	return translatePlaywrightErr(h.Press(key))
}

func (s *PlaywrightSession) Screenshot(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (s *PlaywrightSession) Close() error {
	if err := s.page.Close(); err != nil {
		return err
	}
	return s.browserCtx.Close()
}

// Humanize moves the mouse and scrolls a little, the way a reader would.
func (s *PlaywrightSession) Humanize(ctx context.Context) error {
	if err := MouseJiggle(ctx, s.page); err != nil {
		return err
	}
	return HumanScroll(ctx, s.page)
}

// clickIntercepted matches actionability failures: another element receives
// the pointer event, or the element never became clickable in time.
func clickIntercepted(err error) bool {
	return strings.Contains(err.Error(), "intercepts pointer events") || errors.Is(err, playwright.ErrTimeout)
}

func translatePlaywrightErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "not attached to the DOM") || strings.Contains(msg, "Element is detached") {
		return fmt.Errorf("%w: %v", ErrStaleElement, err)
	}
	return err
}
