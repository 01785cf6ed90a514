// Package apply submits one-click ("Easy Apply") applications for jobs the
// crawler has already saved.
package apply

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

var ErrUnsupported = errors.New("site has no easy apply flow")

// Recorder stores the outcome of each attempt.
type Recorder interface {
	UpsertApplication(ctx context.Context, source string, app models.Application) error
}

type EasyApply struct {
	driver   browser.Driver
	profile  site.Profile
	rule     site.ApplyRule
	pause    stealth.Range
	pauser   stealth.Pauser
	recorder Recorder
	logger   arbor.ILogger
}

type Option func(*EasyApply)

func WithRecorder(r Recorder) Option {
	return func(a *EasyApply) { a.recorder = r }
}

func New(driver browser.Driver, profile site.Profile, pause stealth.Range, pauser stealth.Pauser, logger arbor.ILogger, opts ...Option) (*EasyApply, error) {
	if profile.Apply == nil {
		return nil, fmt.Errorf("%s: %w", profile.Name, ErrUnsupported)
	}
	a := &EasyApply{
		driver:  driver,
		profile: profile,
		rule:    *profile.Apply,
		pause:   pause,
		pauser:  pauser,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Apply opens the job behind el and walks the apply dialog. A dialog with a
// direct submit button is submitted; anything longer is dismissed and the
// draft discarded.
func (a *EasyApply) Apply(ctx context.Context, el browser.Element) models.ApplicationStatus {
	var link models.JobLink
	if href, err := a.driver.Attribute(ctx, el, "href"); err == nil {
		link = a.profile.Canonicalize(href)
	}

	status, err := a.apply(ctx, el)
	if err != nil {
		a.logger.Warn().Err(err).Str("link", string(link)).Msg("Easy Apply failed")
	}
	if a.recorder != nil && link != "" {
		app := models.Application{Link: link, Status: status}
		if err := a.recorder.UpsertApplication(ctx, a.profile.Name, app); err != nil {
			a.logger.Warn().Err(err).Str("link", string(link)).Msg("Failed to record application")
		}
	}
	return status
}

func (a *EasyApply) apply(ctx context.Context, el browser.Element) (models.ApplicationStatus, error) {
	if err := a.driver.Activate(ctx, el); err != nil {
		return models.StatusFailed, fmt.Errorf("open job: %w", err)
	}
	if err := a.pauser.Pause(ctx, a.pause); err != nil {
		return models.StatusFailed, err
	}

	button, ok, err := browser.FindOptional(ctx, a.driver, a.rule.ApplyButton)
	if err != nil {
		return models.StatusFailed, err
	}
	if !ok {
		return models.StatusUnavailable, nil
	}
	if err := a.click(ctx, button); err != nil {
		return models.StatusFailed, fmt.Errorf("apply button: %w", err)
	}

	submit, ok, err := browser.FindOptional(ctx, a.driver, a.rule.SubmitButton)
	if err != nil {
		return models.StatusFailed, err
	}
	if ok {
		if err := a.click(ctx, submit); err != nil {
			return models.StatusFailed, fmt.Errorf("submit: %w", err)
		}
		return models.StatusSubmitted, nil
	}

	if err := a.clickSelector(ctx, a.rule.DismissButton); err != nil {
		return models.StatusFailed, fmt.Errorf("dismiss: %w", err)
	}
	if err := a.clickSelector(ctx, a.rule.ConfirmDiscard); err != nil {
		return models.StatusFailed, fmt.Errorf("confirm discard: %w", err)
	}
	return models.StatusDiscarded, nil
}

func (a *EasyApply) clickSelector(ctx context.Context, selector string) error {
	el, err := a.driver.FindElement(ctx, selector)
	if err != nil {
		return err
	}
	return a.click(ctx, el)
}

func (a *EasyApply) click(ctx context.Context, el browser.Element) error {
	if err := a.driver.Activate(ctx, el); err != nil {
		return err
	}
	return a.pauser.Pause(ctx, a.pause)
}
