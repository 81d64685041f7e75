package scenarios

import (
	"context"
	"errors"
	"fmt"

	"github.com/robotomize/corpsuite/internal/browser"
	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/logging"
	"github.com/robotomize/corpsuite/internal/pages"
	"github.com/robotomize/corpsuite/internal/suite"
)

var ErrNoCredentials = errors.New("portal credentials not configured")

// Browser is the part of a launched browser a session owns.
type Browser interface {
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Credentials sign a session into the portal.
type Credentials struct {
	URL      string
	Username string
	Password string
}

// Session is a browser signed in and out through the portal page objects.
type Session struct {
	browser Browser
	driver  pages.Driver
	login   pages.Login
	signOut *pages.SignOut
	creds   Credentials
}

var _ suite.Session = (*Session)(nil)

func NewSession(b Browser, d pages.Driver, portal config.Portal, creds Credentials, opts ...pages.Option) *Session {
	var login pages.Login = pages.NewCorpLogin(d, opts...)
	if portal == config.PortalHDFC {
		login = pages.NewHDFCLogin(d, opts...)
	}

	return &Session{
		browser: b,
		driver:  d,
		login:   login,
		signOut: pages.NewSignOut(d, login.Landing(), opts...),
		creds:   creds,
	}
}

func (s *Session) Driver() pages.Driver {
	return s.driver
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	return s.browser.Screenshot(ctx)
}

func (s *Session) Login(ctx context.Context) error {
	if s.creds.Username == "" || s.creds.Password == "" {
		return ErrNoCredentials
	}

	return s.login.Login(ctx, s.creds.URL, s.creds.Username, s.creds.Password)
}

func (s *Session) SignOut(ctx context.Context) error {
	return s.signOut.SignOut(ctx)
}

func (s *Session) Close() error {
	return s.browser.Close()
}

type LauncherOption func(*Launcher)

func WithLogger(logger logging.Logger) LauncherOption {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithPageOptions(opts ...pages.Option) LauncherOption {
	return func(l *Launcher) {
		l.pageOpts = append(l.pageOpts, opts...)
	}
}

func withLaunch(fn func(config.Browser) (Browser, pages.Driver, error)) LauncherOption {
	return func(l *Launcher) {
		l.launch = fn
	}
}

// Launcher opens one signed-out browser session per test class.
type Launcher struct {
	cfg      *config.Config
	logger   logging.Logger
	pageOpts []pages.Option
	launch   func(config.Browser) (Browser, pages.Driver, error)
}

func NewLauncher(cfg *config.Config, opts ...LauncherOption) *Launcher {
	l := &Launcher{cfg: cfg, logger: logging.Discard()}
	l.launch = l.chromium

	for _, o := range opts {
		o(l)
	}

	return l
}

// Open satisfies suite.Opener.
func (l *Launcher) Open(ctx context.Context, class string) (suite.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, d, err := l.launch(l.cfg.Browser)
	if err != nil {
		return nil, fmt.Errorf("launch browser for %s: %w", class, err)
	}

	l.logger.Donef("Browser setup completed for %s", class)

	creds := Credentials{URL: l.cfg.BaseURL, Username: l.cfg.Username, Password: l.cfg.Password}

	return NewSession(b, d, l.cfg.Portal, creds, l.pageOpts...), nil
}

func (l *Launcher) chromium(cfg config.Browser) (Browser, pages.Driver, error) {
	s, err := browser.Launch(cfg, browser.WithLogger(l.logger))
	if err != nil {
		return nil, nil, err
	}

	return s, s.Driver(), nil
}
