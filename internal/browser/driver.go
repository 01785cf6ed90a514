package browser

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	ErrNotFound         = errors.New("element not found")
	ErrStaleElement     = errors.New("element belongs to a previous render")
	ErrClickIntercepted = errors.New("click intercepted by another element")
)

// Element is a handle to an on-page element. It is only valid for the render
// epoch it was discovered in.
type Element struct {
	epoch uint64
	ref   any
}

func NewElement(epoch uint64, ref any) Element {
	return Element{epoch: epoch, ref: ref}
}

func (e Element) Epoch() uint64 { return e.epoch }
func (e Element) Ref() any      { return e.ref }
func (e Element) IsZero() bool  { return e.ref == nil }

// Driver is what the crawl core needs from a live browser page.
type Driver interface {
	// FindElement returns ErrNotFound when nothing matches.
	FindElement(ctx context.Context, selector string) (Element, error)
	FindAllElements(ctx context.Context, selector string) ([]Element, error)
	Attribute(ctx context.Context, el Element, name string) (string, error)
	Text(ctx context.Context, el Element) (string, error)
	// Activate clicks the element, falling back to a programmatic click when
	// the pointer click is intercepted.
	Activate(ctx context.Context, el Element) error
	ScrollIntoView(ctx context.Context, el Element) error
	PageMarkup(ctx context.Context) (string, error)
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)

	// Epoch identifies the current render of the page.
	Epoch() uint64
	// Invalidate marks every handle handed out so far as stale.
	Invalidate()
}

// Session adds the input and lifecycle operations used outside the crawl core.
type Session interface {
	Driver
	Fill(ctx context.Context, el Element, text string) error
	Press(ctx context.Context, el Element, key string) error
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// renderEpoch is embedded by adapters to track staleness.
type renderEpoch struct {
	n atomic.Uint64
}

func (r *renderEpoch) Epoch() uint64 { return r.n.Load() }
func (r *renderEpoch) Invalidate()   { r.n.Add(1) }

func (r *renderEpoch) wrap(ref any) Element {
	return NewElement(r.n.Load(), ref)
}

func (r *renderEpoch) check(el Element) error {
	if el.IsZero() {
		return ErrNotFound
	}
	if el.epoch != r.n.Load() {
		return ErrStaleElement
	}
	return nil
}

// IsStale reports whether el was discovered before the driver's current render.
func IsStale(d Driver, el Element) bool {
	return el.Epoch() != d.Epoch()
}

// FindOptional looks up selector and reports whether it was present.
// Errors other than ErrNotFound are returned.
func FindOptional(ctx context.Context, d Driver, selector string) (Element, bool, error) {
	el, err := d.FindElement(ctx, selector)
	if errors.Is(err, ErrNotFound) {
		return Element{}, false, nil
	}
	if err != nil {
		return Element{}, false, err
	}
	return el, true, nil
}
