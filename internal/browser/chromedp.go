package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/ternarybob/arbor"
)

// ChromeDPSession drives a single Chrome tab over the DevTools protocol.
type ChromeDPSession struct {
	renderEpoch
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	logger      arbor.ILogger
}

// NewChromeDP launches Chrome and opens one tab carrying cookies.
func NewChromeDP(parent context.Context, opts Options, cookies []Cookie, logger arbor.ILogger) (*ChromeDPSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Width > 0 && opts.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if p := os.Getenv("CHROME_PATH"); p != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(p))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &ChromeDPSession{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		logger:      logger,
	}

	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("could not start chrome: %w", err)
	}
	if len(cookies) > 0 {
		if err := chromedp.Run(tabCtx, setCookies(cookies)); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}

	logger.Info().Bool("headless", opts.Headless).Msg("ChromeDP browser launched")
	return s, nil
}

func setCookies(cookies []Cookie) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			p := &network.CookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			}
			if p.Path == "" {
				p.Path = "/"
			}
			if c.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p.Expires = &exp
			}
			switch c.SameSite {
			case "Lax":
				p.SameSite = network.CookieSameSiteLax
			case "Strict":
				p.SameSite = network.CookieSameSiteStrict
			case "None":
				p.SameSite = network.CookieSameSiteNone
			}
			params = append(params, p)
		}
		return network.SetCookies(params).Do(ctx)
	}
}

// run executes actions on the tab, cancelled when either ctx or the tab ends.
func (s *ChromeDPSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeDPSession) node(el Element) (*cdp.Node, error) {
	if err := s.check(el); err != nil {
		return nil, err
	}
	n, ok := el.Ref().(*cdp.Node)
	if !ok {
		return nil, fmt.Errorf("element is not a devtools node: %T", el.Ref())
	}
	return n, nil
}

func (s *ChromeDPSession) FindElement(ctx context.Context, selector string) (Element, error) {
	els, err := s.FindAllElements(ctx, selector)
	if err != nil {
		return Element{}, err
	}
	if len(els) == 0 {
		return Element{}, ErrNotFound
	}
	return els[0], nil
}

func (s *ChromeDPSession) FindAllElements(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("query all %q: %w", selector, err)
	}
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.wrap(n))
	}
	return out, nil
}

func (s *ChromeDPSession) Attribute(ctx context.Context, el Element, name string) (string, error) {
	n, err := s.node(el)
	if err != nil {
		return "", err
	}
	return n.AttributeValue(name), nil
}

func (s *ChromeDPSession) Text(ctx context.Context, el Element) (string, error) {
	n, err := s.node(el)
	if err != nil {
		return "", err
	}
	var text string
	err = s.run(ctx, chromedp.Text([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID))
	return text, err
}

func (s *ChromeDPSession) Activate(ctx context.Context, el Element) error {
	n, err := s.node(el)
	if err != nil {
		return err
	}
	err = s.run(ctx, chromedp.MouseClickNode(n))
	if err == nil {
		return nil
	}
	s.logger.Debug().Err(err).Msg("Pointer click failed, using programmatic click")
	if err := s.run(ctx, programmaticClick(n)); err != nil {
		return fmt.Errorf("%w: %v", ErrClickIntercepted, err)
	}
	return nil
}

func programmaticClick(n *cdp.Node) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStaleElement, err)
		}
		_, exc, err := runtime.CallFunctionOn("function() { this.click(); }").
			WithObjectID(obj.ObjectID).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		return nil
	}
}

func (s *ChromeDPSession) ScrollIntoView(ctx context.Context, el Element) error {
	n, err := s.node(el)
	if err != nil {
		return err
	}
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID).Do(ctx)
	}))
}

func (s *ChromeDPSession) PageMarkup(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *ChromeDPSession) Navigate(ctx context.Context, url string) error {
	defer s.Invalidate()
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *ChromeDPSession) CurrentURL(ctx context.Context) (string, error) {
	var u string
	err := s.run(ctx, chromedp.Location(&u))
	return u, err
}

func (s *ChromeDPSession) Fill(ctx context.Context, el Element, text string) error {
	n, err := s.node(el)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{n.NodeID}
	return s.run(ctx,
		chromedp.Clear(ids, chromedp.ByNodeID),
		chromedp.SendKeys(ids, text, chromedp.ByNodeID),
	)
}

var chromedpKeys = map[string]string{
	"Enter":  kb.Enter,
	"Tab":    kb.Tab,
	"Escape": kb.Escape,
}

func (s *ChromeDPSession) Press(ctx context.Context, el Element, key string) error {
	n, err := s.node(el)
	if err != nil {
		return err
	}
	if k, ok := chromedpKeys[key]; ok {
		key = k
	}
	return s.run(ctx, chromedp.SendKeys([]cdp.NodeID{n.NodeID}, key, chromedp.ByNodeID))
}

func (s *ChromeDPSession) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func (s *ChromeDPSession) Close() error {
	s.tabCancel()
	s.allocCancel()
	return nil
}
