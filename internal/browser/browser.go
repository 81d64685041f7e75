package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/logging"
)

type Option func(*Session)

func WithLogger(logger logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one Chromium instance with a single page, opened per test
// class.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	driver  *Driver

	logger logging.Logger
}

// Install downloads the playwright driver and Chromium. It is needed once
// per machine, before the first Launch.
func Install() error {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("playwright.Install: %w", err)
	}

	return nil
}

func Launch(cfg config.Browser, opts ...Option) (*Session, error) {
	s := &Session{logger: logging.Discard()}
	for _, o := range opts {
		o(s)
	}

	s.logger.Infof("Setting up Chromium browser (headless: %t)", cfg.Headless)

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright.Run: %w", err)
	}
	s.pw = pw

	browser, err := pw.Chromium.Launch(launchOptions(cfg))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("chromium launch: %w", err), s.Close())
	}
	s.browser = browser

	bctx, err := browser.NewContext(contextOptions(cfg))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("browser.NewContext: %w", err), s.Close())
	}
	s.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("context.NewPage: %w", err), s.Close())
	}
	s.page = page

	page.SetDefaultTimeout(float64(cfg.Timeout.Milliseconds()))
	s.driver = NewDriver(page)

	s.logger.Debugf("Browser initialized with viewport %dx%d", cfg.Width, cfg.Height)

	return s, nil
}

func (s *Session) Page() playwright.Page {
	return s.page
}

func (s *Session) Driver() *Driver {
	return s.driver
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.page == nil {
		return nil, errors.New("browser page is not open")
	}

	body, err := s.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("page.Screenshot: %w", err)
	}

	return body, nil
}

// Close releases the page, context, browser and driver process. It is safe
// on a partially launched session.
func (s *Session) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("context.Close: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("browser.Close: %w", err))
		}
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("playwright.Stop: %w", err))
		}
	}

	s.page, s.context, s.browser, s.pw = nil, nil, nil, nil

	return errors.Join(errs...)
}

func launchOptions(cfg config.Browser) playwright.BrowserTypeLaunchOptions {
	return playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMo.Milliseconds())),
		Args:     []string{"--remote-allow-origins=*"},
	}
}

func contextOptions(cfg config.Browser) playwright.BrowserNewContextOptions {
	return playwright.BrowserNewContextOptions{
		Viewport:        &playwright.Size{Width: cfg.Width, Height: cfg.Height},
		AcceptDownloads: playwright.Bool(true),
	}
}
