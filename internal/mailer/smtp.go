package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/logging"
)

const defaultTimeout = 30 * time.Second

var ErrDisabled = errors.New("email sending disabled")

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Option func(*SMTPSender)

func WithLogger(logger logging.Logger) Option {
	return func(s *SMTPSender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *SMTPSender) {
		s.tlsConfig = cfg
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *SMTPSender) {
		if now != nil {
			s.now = now
		}
	}
}

// SMTPSender sends mail over SMTP. email.smtp.ssl selects implicit TLS;
// otherwise email.smtp.tls upgrades with STARTTLS when the server offers it.
// Every network step shares one deadline derived from the timeout.
type SMTPSender struct {
	cfg       config.Email
	tlsConfig *tls.Config
	logger    logging.Logger
	now       func() time.Time
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTP(cfg config.Email, opts ...Option) *SMTPSender {
	s := SMTPSender{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		logger:    logging.Discard(),
		now:       time.Now,
	}

	for _, o := range opts {
		o(&s)
	}

	return &s
}

// Gmail applies the Gmail SMTP endpoint to cfg, keeping credentials and
// recipients.
func Gmail(cfg config.Email) config.Email {
	cfg.Host = "smtp.gmail.com"
	cfg.Port = 587
	cfg.SSL = false
	cfg.TLS = true

	return cfg
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}

	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("email config: %w", err)
	}

	if msg.From == "" {
		msg.From = s.cfg.From
	}

	if len(msg.To) == 0 {
		msg.To = s.cfg.Recipients
	}

	body, err := Compose(msg, s.now())
	if err != nil {
		return err
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Infof("Connecting to SMTP server %s", s.cfg.Addr())

	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := s.authenticate(client); err != nil {
		return err
	}

	sender := addressOnly(msg.From)
	if err := client.Mail(sender); err != nil {
		return fmt.Errorf("smtp Mail: %w", err)
	}

	for _, to := range msg.To {
		if err := client.Rcpt(addressOnly(to)); err != nil {
			return fmt.Errorf("smtp Rcpt %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp Data: %w", err)
	}

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("smtp Data Write: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp Data Close: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp Quit: %w", err)
	}

	s.logger.Donef("Email sent to %d recipients", len(msg.To))

	return nil
}

func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("net.Dial %s: %w", s.cfg.Addr(), err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("conn SetDeadline: %w", err)
		}
	}

	if s.cfg.SSL {
		conn = tls.Client(conn, s.tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp.NewClient: %w", err)
	}

	if s.cfg.SSL || !s.cfg.TLS {
		return client, nil
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		s.logger.Warnf("SMTP server %s does not offer STARTTLS, continuing without it", s.cfg.Addr())
		return client, nil
	}

	if err := client.StartTLS(s.tlsConfig); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("smtp StartTLS: %w", err)
	}

	return client, nil
}

func (s *SMTPSender) authenticate(client *smtp.Client) error {
	var auth smtp.Auth = &loginAuth{username: s.cfg.Username, password: s.cfg.Password}
	if ok, mechs := client.Extension("AUTH"); !ok || strings.Contains(strings.ToUpper(mechs), "PLAIN") {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp Auth: %w", err)
	}

	return nil
}

func addressOnly(s string) string {
	if i := strings.LastIndex(s, "<"); i >= 0 {
		return strings.TrimSuffix(s[i+1:], ">")
	}

	return strings.TrimSpace(s)
}

type loginAuth struct {
	username, password string
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(string(fromServer))) {
	case "username:":
		return []byte(a.username), nil
	case "password:":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
	}
}
