package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robotomize/corpsuite/internal/config"
)

// fakeSMTP accepts a single session and records the envelope and data.
type fakeSMTP struct {
	ln     net.Listener
	silent bool
	wg     sync.WaitGroup

	mu       sync.Mutex
	commands []string
	data     []byte
}

func newFakeSMTP(t *testing.T, silent bool) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeSMTP{ln: ln, silent: silent}
	f.wg.Add(1)
	go f.serve()

	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) close() {
	_ = f.ln.Close()
	f.wg.Wait()
}

func (f *fakeSMTP) serve() {
	defer f.wg.Done()

	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	if f.silent {
		_, _ = io.Copy(io.Discard, conn)
		return
	}

	tp := textproto.NewConn(conn)
	reply := func(lines ...string) {
		for _, l := range lines {
			_ = tp.PrintfLine("%s", l)
		}
	}

	reply("220 fake.smtp ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}

		f.mu.Lock()
		f.commands = append(f.commands, strings.SplitN(line, " ", 2)[0])
		f.mu.Unlock()

		switch verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); verb {
		case "EHLO", "HELO":
			reply("250-fake.smtp", "250 AUTH PLAIN LOGIN")
		case "AUTH":
			reply("235 2.7.0 accepted")
		case "MAIL", "RCPT":
			reply("250 2.1.0 ok")
		case "DATA":
			reply("354 go ahead")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = data
			f.mu.Unlock()
			reply("250 2.0.0 queued")
		case "QUIT":
			reply("221 2.0.0 bye")
			return
		default:
			reply("502 unknown")
		}
	}
}

func emailConfig(port int) config.Email {
	return config.Email{
		Enabled:    true,
		Host:       "127.0.0.1",
		Port:       port,
		TLS:        true,
		Timeout:    2 * time.Second,
		From:       "qa@example.test",
		Username:   "qa@example.test",
		Password:   "app-password",
		Recipients: []string{"lead@example.test", "Team <team@example.test>"},
	}
}

func TestSMTPSender_Send(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := newFakeSMTP(t, false)
	defer srv.close()

	sender := NewSMTP(emailConfig(srv.port()))
	msg := Message{
		Subject: "[Test Report] Corpstack - 2024-03-01 10:00",
		HTML:    "<p>3 tests</p>",
		Attachments: []Attachment{
			{Filename: "TestReport_2024-03-01_10-00-00.html", ContentType: "text/html", Body: []byte("<html></html>")},
		},
	}

	require.NoError(t, sender.Send(context.Background(), msg))
	srv.close()

	require.Equal(t, []string{"EHLO", "AUTH", "MAIL", "RCPT", "RCPT", "DATA", "QUIT"}, srv.commands)

	r, err := gomail.CreateReader(bytes.NewReader(srv.data))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	require.Equal(t, msg.Subject, subject)

	var filenames []string
	for {
		p, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		if h, ok := p.Header.(*gomail.AttachmentHeader); ok {
			name, err := h.Filename()
			require.NoError(t, err)
			filenames = append(filenames, name)
		}
	}

	require.Equal(t, []string{"TestReport_2024-03-01_10-00-00.html"}, filenames)
}

func TestSMTPSender_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := newFakeSMTP(t, true)
	defer srv.close()

	cfg := emailConfig(srv.port())
	cfg.Timeout = 200 * time.Millisecond

	start := time.Now()
	err := NewSMTP(cfg).Send(context.Background(), Message{Subject: "s", HTML: "b"})
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)

	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "want timeout, got %v", err)
}

func TestSMTPSender_Config(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(c *config.Email)
		expected error
	}{
		{
			name:     "test_disabled",
			mutate:   func(c *config.Email) { c.Enabled = false },
			expected: ErrDisabled,
		},
		{
			name:     "test_no_recipients",
			mutate:   func(c *config.Email) { c.Recipients = nil },
			expected: config.ErrNoRecipients,
		},
		{
			name:     "test_no_password",
			mutate:   func(c *config.Email) { c.Password = "" },
			expected: config.ErrMissingCredentials,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := emailConfig(25)
			tc.mutate(&cfg)

			err := NewSMTP(cfg).Send(context.Background(), Message{Subject: "s"})
			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestLoginAuth(t *testing.T) {
	t.Parallel()

	a := &loginAuth{username: "u", password: "p"}

	got, err := a.Next([]byte("Username:"), true)
	require.NoError(t, err)
	require.Equal(t, "u", string(got))

	got, err = a.Next([]byte("Password:"), true)
	require.NoError(t, err)
	require.Equal(t, "p", string(got))

	_, err = a.Next([]byte("Token:"), true)
	require.Error(t, err)
}

func TestGmail(t *testing.T) {
	t.Parallel()

	got := Gmail(config.Email{Host: "mail.local", Port: 25, SSL: true, Username: "u"})
	require.Equal(t, "smtp.gmail.com:587", got.Addr())
	require.True(t, got.TLS)
	require.False(t, got.SSL)
	require.Equal(t, "u", got.Username)
}
