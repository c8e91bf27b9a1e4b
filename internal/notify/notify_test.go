package notify

import (
	"context"
	"errors"
	"io"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/task-service/internal/config"
	"github.com/jordan-wright/email"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "2525",
		SMTPUsername: "mailer",
		SMTPPassword: "pw",
		SenderEmail:  "noreply@example.com",
		AdminEmail:   "admin@example.com",
	}
}

func TestSender_NotifyRegistration(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	s := NewSender(testConfig(), log)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	var (
		sent     *email.Email
		sentAddr string
		sentAuth smtp.Auth
	)
	s.send = func(_ context.Context, e *email.Email, addr string, a smtp.Auth) error {
		sent, sentAddr, sentAuth = e, addr, a
		return nil
	}

	require.NoError(t, s.NotifyRegistration(context.Background(), "alice"))
	require.NotNil(t, sent)
	assert.Equal(t, "smtp.example.com:2525", sentAddr)
	assert.NotNil(t, sentAuth)
	assert.Equal(t, "noreply@example.com", sent.From)
	assert.Equal(t, []string{"admin@example.com"}, sent.To)
	assert.Contains(t, string(sent.Text), "Username: alice")
	assert.Contains(t, string(sent.Text), "2025-01-02 03:04:05")
}

func TestSender_NoAuthWithoutUsername(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := testConfig()
	cfg.SMTPUsername = ""
	s := NewSender(cfg, log)

	var sentAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	s.send = func(_ context.Context, _ *email.Email, _ string, a smtp.Auth) error {
		sentAuth = a
		return nil
	}
	require.NoError(t, s.NotifyRegistration(context.Background(), "bob"))
	assert.Nil(t, sentAuth)
}

func TestSender_SendFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	s := NewSender(testConfig(), log)
	s.send = func(context.Context, *email.Email, string, smtp.Auth) error { return errors.New("relay denied") }

	err := s.NotifyRegistration(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay denied")
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "alice")
}

func TestSender_CancelledContext(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	s := NewSender(testConfig(), log)
	s.send = func(context.Context, *email.Email, string, smtp.Auth) error {
		t.Fatal("send must not be called")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.NotifyRegistration(ctx, "alice"), context.Canceled)
}

func TestSender_SendIsBounded(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := testConfig()
	cfg.SMTPTimeout = 250 * time.Millisecond
	s := NewSender(cfg, log)

	var deadline time.Time
	s.send = func(ctx context.Context, _ *email.Email, _ string, _ smtp.Auth) error {
		var ok bool
		deadline, ok = ctx.Deadline()
		require.True(t, ok)
		return nil
	}

	start := time.Now()
	require.NoError(t, s.NotifyRegistration(context.Background(), "alice"))
	assert.WithinDuration(t, start.Add(250*time.Millisecond), deadline, 100*time.Millisecond)
}

// silentListener accepts connections and never writes to them.
func silentListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return ln
}

func TestSender_SilentServer(t *testing.T) {
	ln := silentListener(t)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	log, _ := logtest.NewNullLogger()
	cfg := testConfig()
	cfg.SMTPHost, cfg.SMTPPort = host, port
	cfg.SMTPUsername = ""
	s := NewSender(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.NotifyRegistration(ctx, "alice") }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyRegistration kept waiting on a server that never answers")
	}
}

// serveSMTP answers one client with a minimal SMTP dialogue and returns the
// message body it received.
func serveSMTP(t *testing.T, ln net.Listener) <-chan string {
	t.Helper()
	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "MAIL", "RCPT":
				_ = tp.PrintfLine("250 OK")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, _ := io.ReadAll(tp.DotReader())
				got <- string(body)
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unsupported")
			}
		}
	}()
	return got
}

func TestSender_DeliversOverSMTP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	got := serveSMTP(t, ln)

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()
	cfg := testConfig()
	cfg.SMTPHost, cfg.SMTPPort = host, port
	cfg.SMTPUsername = ""
	s := NewSender(cfg, log)

	require.NoError(t, s.NotifyRegistration(context.Background(), "alice"))
	select {
	case body := <-got:
		assert.Contains(t, body, "Subject: New Task Service Registration")
		assert.Contains(t, body, "Username: alice")
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.NotifyRegistration(context.Background(), "x"))
}
