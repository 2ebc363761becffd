package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// SMTPConfig describes the relay and the login used on it.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string // app-password for providers such as Gmail
	Timeout  time.Duration
}

// session is the subset of *smtp.Client the sender drives.
type session interface {
	Extension(ext string) (bool, string)
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

type dialFunc func(ctx context.Context, host string, port int, timeout time.Duration) (session, error)

// SMTPSender submits messages over a STARTTLS-upgraded SMTP session.
type SMTPSender struct {
	cfg  SMTPConfig
	dial dialFunc
	now  func() time.Time
}

// NewSMTPSender creates a sender for cfg. A non-positive timeout defaults to 30s.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg, dial: dialSMTP, now: time.Now}
}

// Send makes one delivery attempt. Credential rejections wrap ErrAuth; every
// other failure wraps ErrSend.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := Validate(msg); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	raw, err := Encode(msg, s.now())
	if err != nil {
		return fmt.Errorf("%w: encode message: %w", ErrSend, err)
	}

	c, err := s.dial(ctx, s.cfg.Host, s.cfg.Port, s.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("%w: connect: %w", ErrSend, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("%w: %s does not offer STARTTLS", ErrSend, s.cfg.Host)
	}
	if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
		return fmt.Errorf("%w: starttls: %w", ErrSend, err)
	}

	if s.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return classifyAuth(err)
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("%w: mail from: %w", ErrSend, err)
	}
	for _, to := range msg.To {
		if err := c.Rcpt(to); err != nil {
			return fmt.Errorf("%w: rcpt to %s: %w", ErrSend, to, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("%w: data: %w", ErrSend, err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: write body: %w", ErrSend, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: finish data: %w", ErrSend, err)
	}

	// The relay has accepted the message once DATA is closed.
	_ = c.Quit()
	return nil
}

// classifyAuth maps a server reply to the AUTH command onto ErrAuth. Local
// and transport failures stay ErrSend.
func classifyAuth(err error) error {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	return fmt.Errorf("%w: auth: %w", ErrSend, err)
}

func dialSMTP(ctx context.Context, host string, port int, timeout time.Duration) (session, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}
