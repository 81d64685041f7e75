package inbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/retry"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/logging"
)

const DefaultOTPPattern = `\b\d{6}\b`

var (
	ErrNoMessage = errors.New("no matching unread message")
	ErrNoOTP     = errors.New("no otp found in message")
)

type imapClient interface {
	Login(username, password string) commandWaiter
	Logout() commandWaiter
	Close() error
	Select(mailbox string, options *imap.SelectOptions) selectWaiter
	UIDSearch(criteria *imap.SearchCriteria, options *imap.SearchOptions) searchWaiter
	Fetch(numSet imap.NumSet, options *imap.FetchOptions) fetchWaiter
}

type commandWaiter interface{ Wait() error }
type selectWaiter interface {
	Wait() (*imap.SelectData, error)
}
type searchWaiter interface {
	Wait() (*imap.SearchData, error)
}
type fetchWaiter interface {
	Collect() ([]*imapclient.FetchMessageBuffer, error)
	Close() error
}

// Message is an unread mail matched by subject.
type Message struct {
	UID     imap.UID
	Subject string
	Date    time.Time
	Text    string
}

type Option func(*Fetcher)

func WithLogger(logger logging.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithDialTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.dialTimeout = timeout
		}
	}
}

func withClientFactory(factory func(config.IMAP) (imapClient, error)) Option {
	return func(f *Fetcher) {
		f.newClient = factory
	}
}

// Fetcher reads one-time passwords from an IMAP mailbox, Gmail by default.
type Fetcher struct {
	cfg         config.IMAP
	dialTimeout time.Duration
	logger      logging.Logger
	newClient   func(config.IMAP) (imapClient, error)
}

func New(cfg config.IMAP, opts ...Option) *Fetcher {
	f := &Fetcher{
		cfg:         cfg,
		dialTimeout: 10 * time.Second,
		logger:      logging.Discard(),
	}
	f.newClient = f.defaultClientFactory

	for _, o := range opts {
		o(f)
	}

	return f
}

// LatestUnread returns the newest unread message whose subject contains
// keyword. Only that message is fetched in full, so other unread mail keeps
// its flag.
func (f *Fetcher) LatestUnread(ctx context.Context, keyword string) (Message, error) {
	if f.cfg.Username == "" || f.cfg.Password == "" {
		return Message{}, config.ErrMissingCredentials
	}

	client, err := f.newClient(f.cfg)
	if err != nil {
		return Message{}, fmt.Errorf("imap connect: %w", err)
	}
	defer f.safeClose(client)

	if err := client.Login(f.cfg.Username, f.cfg.Password).Wait(); err != nil {
		return Message{}, fmt.Errorf("imap auth: %w", err)
	}

	mailbox := f.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	if _, err := client.Select(mailbox, nil).Wait(); err != nil {
		return Message{}, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	f.logger.Debugf("Searching for unread email with subject containing: %s", keyword)

	search, err := client.UIDSearch(&imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}, nil).Wait()
	if err != nil {
		return Message{}, fmt.Errorf("imap search: %w", err)
	}

	uids := search.AllUIDs()
	if len(uids) == 0 {
		return Message{}, ErrNoMessage
	}

	envelopes, err := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{UID: true, Envelope: true}).Collect()
	if err != nil {
		return Message{}, fmt.Errorf("imap fetch envelopes: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	slices.SortFunc(envelopes, func(a, b *imapclient.FetchMessageBuffer) int {
		return int(b.UID) - int(a.UID)
	})

	var found *imapclient.FetchMessageBuffer
	for _, buf := range envelopes {
		if buf.Envelope != nil && strings.Contains(buf.Envelope.Subject, keyword) {
			found = buf
			break
		}
	}

	if found == nil {
		return Message{}, ErrNoMessage
	}

	section := &imap.FetchItemBodySection{}
	bodies, err := client.Fetch(imap.UIDSetNum(found.UID), &imap.FetchOptions{UID: true, BodySection: []*imap.FetchItemBodySection{section}}).Collect()
	if err != nil {
		return Message{}, fmt.Errorf("imap fetch body: %w", err)
	}

	msg := Message{UID: found.UID, Subject: found.Envelope.Subject, Date: found.Envelope.Date}
	for _, buf := range bodies {
		if raw := buf.FindBodySection(section); raw != nil {
			msg.Text = TextBody(raw)
			break
		}
	}

	f.logger.Infof("Found matching unread email with subject: %s", msg.Subject)

	if err := client.Logout().Wait(); err != nil {
		f.logger.Warnf("imap logout: %v", err)
	}

	return msg, nil
}

// OTP returns the first match of pattern in the latest unread message whose
// subject contains keyword.
func (f *Fetcher) OTP(ctx context.Context, keyword, pattern string) (string, error) {
	msg, err := f.LatestUnread(ctx, keyword)
	if err != nil {
		return "", err
	}

	return ExtractOTP(msg.Text, pattern)
}

// WaitOTP polls the mailbox until an OTP arrives. retries is the number of
// polls after the first one; a canceled ctx stops polling.
func (f *Fetcher) WaitOTP(ctx context.Context, keyword, pattern string, retries uint, interval time.Duration) (string, error) {
	var otp string

	err := retry.Times(retries).Wait(interval).TryWithAbort(func(attempt uint) (error, bool) {
		if err := ctx.Err(); err != nil {
			return err, true
		}

		code, err := f.OTP(ctx, keyword, pattern)
		if err != nil {
			f.logger.Debugf("OTP not available yet (attempt %d): %v", attempt, err)
			return err, false
		}

		otp = code

		return nil, false
	})
	if err != nil {
		return "", err
	}

	return otp, nil
}

// ExtractOTP returns the first match of pattern in text. An empty pattern
// means six digits.
func ExtractOTP(text, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultOTPPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("regexp.Compile: %w", err)
	}

	otp := re.FindString(text)
	if otp == "" {
		return "", ErrNoOTP
	}

	return otp, nil
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// TextBody returns the plain text of a raw message, preferring text/plain
// over tag-stripped text/html. Non-MIME input is returned as is.
func TextBody(raw []byte) string {
	reader, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	var plain, html string
	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}

		inline, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		mimeType, _, _ := inline.ContentType()
		if mimeType == "" {
			mimeType = "text/plain"
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(mimeType, "text/plain") && plain == "":
			plain = string(body)
		case strings.HasPrefix(mimeType, "text/html") && html == "":
			html = tagRe.ReplaceAllString(string(body), " ")
		}
	}

	if plain != "" {
		return plain
	}

	return html
}

func (f *Fetcher) safeClose(client imapClient) {
	if err := client.Close(); err != nil {
		f.logger.Debugf("imap close: %v", err)
	}
}

func (f *Fetcher) defaultClientFactory(cfg config.IMAP) (imapClient, error) {
	if cfg.Host == "" {
		return nil, errors.New("imap host not configured")
	}

	client, err := imapclient.DialTLS(cfg.Addr(), &imapclient.Options{Dialer: &net.Dialer{Timeout: f.dialTimeout}})
	if err != nil {
		return nil, err
	}

	return &imapClientWrapper{Client: client}, nil
}

type imapClientWrapper struct{ *imapclient.Client }

func (w *imapClientWrapper) Login(username, password string) commandWaiter {
	return w.Client.Login(username, password)
}
func (w *imapClientWrapper) Logout() commandWaiter { return w.Client.Logout() }
func (w *imapClientWrapper) Select(mailbox string, options *imap.SelectOptions) selectWaiter {
	return w.Client.Select(mailbox, options)
}
func (w *imapClientWrapper) UIDSearch(criteria *imap.SearchCriteria, options *imap.SearchOptions) searchWaiter {
	return w.Client.UIDSearch(criteria, options)
}
func (w *imapClientWrapper) Fetch(numSet imap.NumSet, options *imap.FetchOptions) fetchWaiter {
	return w.Client.Fetch(numSet, options)
}
