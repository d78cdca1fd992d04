package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/pkg/config"
)

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	send   sendFunc
}

// NewSMTPSender builds a sender. Without credentials messages are logged instead of sent.
func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send delivers msg or returns the relay error.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Username == "" || s.cfg.Password == "" {
		s.logger.Warn("smtp credentials not configured, mail not sent",
			zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := s.send(addr, auth, s.cfg.FromEmail, []string{msg.To}, s.compose(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) compose(msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(msg.HTML)
	return buf.Bytes()
}

var otpTemplate = template.Must(template.New("otp").Parse(`<html><body style="font-family: Arial, sans-serif;">
<p>Your placement portal verification code is:</p>
<p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
<p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
</body></html>`))

// OTPMessage renders the verification code mail.
func OTPMessage(to, code string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())}
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render otp mail: %w", err)
	}
	return Message{To: to, Subject: "Your placement portal verification code", HTML: buf.String()}, nil
}
