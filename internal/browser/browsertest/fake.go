// Package browsertest provides an in-memory browser.Session for tests.
//
// The fake models a results list that renders lazily: each page starts with a
// few anchors visible and reveals more every time one of them is scrolled into
// view. Activating an anchor selects it and the detail pane for that job is
// included in PageMarkup.
package browsertest

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"go-jobsearch-automation/internal/browser"
)

// Page is one page of search results.
type Page struct {
	// Anchors are hrefs in render order. Repeats and non-job links are allowed.
	Anchors []string
	// Initial is how many anchors are rendered before any scroll; 0 means all.
	Initial int
	// Reveal is how many more anchors each scroll renders; 0 means 1.
	Reveal int
}

type nodeKind int

const (
	anchorNode nodeKind = iota
	controlNode
	staticNode
)

type node struct {
	kind     nodeKind
	href     string
	page     int
	selector string
}

// Session is a scripted browser.Session. Exported fields may be set before
// use; the recorded fields are safe to read after the calls under test return.
type Session struct {
	mu sync.Mutex

	// AnchorSelector is answered with the visible anchors of the current page.
	AnchorSelector string
	// ControlFormat is a fmt format taking a page number, e.g. `button[aria-label="Page %d"]`.
	ControlFormat string
	Pages         map[int]*Page
	// Controls lists page numbers whose control can be found.
	Controls map[int]bool
	// Details maps Key(href) to the inner HTML of the detail pane.
	Details map[string]string
	// Present lists other selectors that match one static element.
	Present map[string]bool
	// Key derives the detail key from an href; defaults to cutting at '?'.
	Key func(href string) string

	// RerenderOnScroll bumps the render epoch after every scroll.
	RerenderOnScroll bool
	// FailActivate makes activating anchors with this key fail.
	FailActivate map[string]error
	// FailMarkup makes the next n PageMarkup calls fail.
	FailMarkup int

	OnClick func(selector string)
	OnPress func(selector, key string)

	epoch    uint64
	current  int
	visible  int
	selected string
	url      string

	Scrolls     int
	Activated   []string
	ControlHits []int
	Filled      map[string]string
	Pressed     []string
	Navigated   []string
	Screenshots []string
	Closed      bool
}

// New returns a session showing page 1 of pages.
func New(pages map[int]*Page) *Session {
	s := &Session{
		AnchorSelector: "a[href]",
		ControlFormat:  `button[aria-label="Page %d"]`,
		Pages:          pages,
		Controls:       map[int]bool{},
		Details:        map[string]string{},
		Present:        map[string]bool{},
		FailActivate:   map[string]error{},
		Filled:         map[string]string{},
	}
	s.showPage(1)
	return s
}

// WithControls registers page controls for pages 1 through n.
func (s *Session) WithControls(n int) *Session {
	for i := 1; i <= n; i++ {
		s.Controls[i] = true
	}
	return s
}

// Href returns the href of an anchor element created by the fake.
func Href(el browser.Element) string {
	if n, ok := el.Ref().(*node); ok {
		return n.href
	}
	return ""
}

func (s *Session) key(href string) string {
	if s.Key != nil {
		return s.Key(href)
	}
	k, _, _ := strings.Cut(href, "?")
	return k
}

func (s *Session) showPage(n int) {
	s.current = n
	s.selected = ""
	s.visible = 0
	if p := s.Pages[n]; p != nil {
		s.visible = p.Initial
		if s.visible <= 0 || s.visible > len(p.Anchors) {
			s.visible = len(p.Anchors)
		}
	}
}

func (s *Session) page() *Page {
	if p := s.Pages[s.current]; p != nil {
		return p
	}
	return &Page{}
}

// rendered is the anchors currently in the DOM. Tests may shrink Anchors.
func (s *Session) rendered() []string {
	p := s.page()
	return p.Anchors[:min(s.visible, len(p.Anchors))]
}

// CurrentPage is the page number whose results are rendered.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Visible is how many anchors of the current page are rendered.
func (s *Session) Visible() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

func (s *Session) resolve(el browser.Element) (*node, error) {
	if el.IsZero() {
		return nil, browser.ErrNotFound
	}
	if el.Epoch() != s.epoch {
		return nil, browser.ErrStaleElement
	}
	n, ok := el.Ref().(*node)
	if !ok {
		return nil, fmt.Errorf("foreign element %T", el.Ref())
	}
	return n, nil
}

func (s *Session) controlFor(selector string) (int, bool) {
	if s.ControlFormat == "" {
		return 0, false
	}
	for n := range s.Controls {
		if fmt.Sprintf(s.ControlFormat, n) == selector {
			return n, true
		}
	}
	return 0, false
}

func (s *Session) FindElement(ctx context.Context, selector string) (browser.Element, error) {
	els, err := s.FindAllElements(ctx, selector)
	if err != nil {
		return browser.Element{}, err
	}
	if len(els) == 0 {
		return browser.Element{}, browser.ErrNotFound
	}
	return els[0], nil
}

func (s *Session) FindAllElements(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if selector == s.AnchorSelector {
		anchors := s.rendered()
		out := make([]browser.Element, 0, len(anchors))
		for _, href := range anchors {
			out = append(out, browser.NewElement(s.epoch, &node{kind: anchorNode, href: href, page: s.current}))
		}
		return out, nil
	}
	if n, ok := s.controlFor(selector); ok {
		return []browser.Element{browser.NewElement(s.epoch, &node{kind: controlNode, page: n, selector: selector})}, nil
	}
	if s.Present[selector] {
		return []browser.Element{browser.NewElement(s.epoch, &node{kind: staticNode, selector: selector})}, nil
	}
	return nil, nil
}

func (s *Session) Attribute(ctx context.Context, el browser.Element, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolve(el)
	if err != nil {
		return "", err
	}
	if name == "href" && n.kind == anchorNode {
		return n.href, nil
	}
	return "", nil
}

func (s *Session) Text(ctx context.Context, el browser.Element) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolve(el)
	if err != nil {
		return "", err
	}
	return n.href, nil
}

func (s *Session) Activate(ctx context.Context, el browser.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	n, err := s.resolve(el)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	var hook func(string)
	switch n.kind {
	case anchorNode:
		if err := s.FailActivate[s.key(n.href)]; err != nil {
			s.mu.Unlock()
			return err
		}
		s.selected = n.href
		s.Activated = append(s.Activated, n.href)
	case controlNode:
		s.ControlHits = append(s.ControlHits, n.page)
		s.showPage(n.page)
		s.epoch++
	case staticNode:
		hook = s.OnClick
	}
	s.mu.Unlock()

	if hook != nil {
		hook(n.selector)
	}
	return nil
}

func (s *Session) ScrollIntoView(ctx context.Context, el browser.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resolve(el); err != nil {
		return err
	}
	s.Scrolls++
	p := s.page()
	reveal := p.Reveal
	if reveal <= 0 {
		reveal = 1
	}
	s.visible = min(s.visible+reveal, len(p.Anchors))
	if s.RerenderOnScroll {
		s.epoch++
	}
	return nil
}

func (s *Session) PageMarkup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailMarkup > 0 {
		s.FailMarkup--
		return "", fmt.Errorf("markup unavailable")
	}

	var b strings.Builder
	b.WriteString("<html><body><ul class=\"results\">")
	for _, href := range s.rendered() {
		fmt.Fprintf(&b, "<li><a href=\"%s\">job</a></li>", html.EscapeString(href))
	}
	b.WriteString("</ul><div class=\"detail\">")
	if s.selected != "" {
		b.WriteString(s.Details[s.key(s.selected)])
	}
	b.WriteString("</div></body></html>")
	return b.String(), nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
	s.Navigated = append(s.Navigated, url)
	s.showPage(1)
	s.epoch++
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *Session) Fill(ctx context.Context, el browser.Element, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolve(el)
	if err != nil {
		return err
	}
	s.Filled[n.selector] = text
	return nil
}

func (s *Session) Press(ctx context.Context, el browser.Element, key string) error {
	s.mu.Lock()
	n, err := s.resolve(el)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.Pressed = append(s.Pressed, key)
	hook := s.OnPress
	s.mu.Unlock()

	if hook != nil {
		hook(n.selector, key)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Screenshots = append(s.Screenshots, path)
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// SetPresent toggles a static selector, typically from OnClick or OnPress.
func (s *Session) SetPresent(selector string, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if present {
		s.Present[selector] = true
	} else {
		delete(s.Present, selector)
	}
}

var _ browser.Session = (*Session)(nil)
