package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/questchain/questchain-api/internal/config"
	"github.com/wneessen/go-mail"
)

var ErrMailDisabled = errors.New("email delivery is not configured")

// Mailer delivers password-reset codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

// NewMailer returns an SMTP mailer when SMTP is configured and a disabled one otherwise.
func NewMailer(cfg *config.Config) Mailer {
	if !cfg.MailEnabled() {
		slog.Warn("SMTP not configured, password reset emails are disabled")
		return DisabledMailer{}
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

type DisabledMailer struct{}

func (DisabledMailer) SendOTP(context.Context, string, string) error {
	return ErrMailDisabled
}

type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string) error {
	msg, err := buildOTPMessage(m.from, to, code)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver email: %w", err)
	}
	return nil
}

func buildOTPMessage(from, to, code string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Password Reset OTP - QuestChain")
	msg.SetBodyString(mail.TypeTextHTML, otpEmailBody(code))
	return msg, nil
}

func otpEmailBody(code string) string {
	return "<h1>Password Reset Request</h1>" +
		"<p>Your OTP for password reset is: <strong>" + code + "</strong></p>" +
		"<p>This OTP will expire in 5 minutes.</p>" +
		"<p>If you didn't request this, please ignore this email.</p>"
}
