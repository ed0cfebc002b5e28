package presenter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
)

const dialTimeout = 10 * time.Second

// SMTPNotifier mails a run summary when the notifications preference is on
type SMTPNotifier struct {
	settings   core.SettingsRepository
	addr       string
	helo       string
	from       string
	recipients []string
	username   string
	password   string
	logger     *zap.Logger
}

// NewSMTPNotifier creates a notifier relaying through addr
func NewSMTPNotifier(
	settings core.SettingsRepository,
	addr string,
	helo string,
	from string,
	recipients []string,
	username string,
	password string,
	logger *zap.Logger,
) *SMTPNotifier {
	return &SMTPNotifier{
		settings:   settings,
		addr:       addr,
		helo:       helo,
		from:       from,
		recipients: recipients,
		username:   username,
		password:   password,
		logger:     logger,
	}
}

// Present sends the summary, or does nothing if notifications are off or there is nobody to tell
func (n *SMTPNotifier) Present(ctx context.Context, result *core.RunResult) error {
	prefs, err := core.LoadSettings(ctx, n.settings)
	if err != nil {
		return err
	}
	if !prefs.Notifications || len(n.recipients) == 0 || result == nil {
		return nil
	}

	msg, err := n.compose(result, time.Now())
	if err != nil {
		return err
	}

	if err := n.send(ctx, msg); err != nil {
		return err
	}

	n.logger.Info("Run summary sent", zap.Strings("recipients", n.recipients))
	return nil
}

func (n *SMTPNotifier) compose(result *core.RunResult, now time.Time) ([]byte, error) {
	from, err := mail.ParseAddress(n.from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	to := make([]*mail.Address, 0, len(n.recipients))
	for _, r := range n.recipients {
		addr, err := mail.ParseAddress(r)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient address %q: %w", r, err)
		}
		to = append(to, addr)
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	h.SetSubject(fmt.Sprintf("Job applications: %d tracked, %d offers", result.Summary.Total, result.Summary.Offers))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if _, err := io.WriteString(w, summaryBody(result)); err != nil {
		return nil, fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryBody(result *core.RunResult) string {
	var sb strings.Builder
	sb.WriteString(SummaryLine(result.Summary))
	sb.WriteString("\n\n")
	for _, r := range result.Records {
		fmt.Fprintf(&sb, "%s  %s  %s  %s\n", r.Date, r.Status, r.Company, r.Role)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(&sb, "\n%d message(s) could not be classified.\n", result.Skipped)
	}
	return sb.String()
}

func (n *SMTPNotifier) send(ctx context.Context, msg []byte) error {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(n.helo); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if n.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", n.username, n.password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(envelopeAddress(n.from), nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range n.recipients {
		if err := c.Rcpt(envelopeAddress(recipient), nil); err != nil {
			n.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// envelopeAddress strips any display name for use in MAIL FROM and RCPT TO
func envelopeAddress(s string) string {
	if addr, err := mail.ParseAddress(s); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(s)
}
