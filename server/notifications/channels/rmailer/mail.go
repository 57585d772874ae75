// Package rmailer is the SMTP transport for the notification dispatcher.
package rmailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSendTimeout = 30 * time.Second

// Mailer sends one HTML email to a list of recipients.
type Mailer interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type AuthType string

const (
	AuthTypeNone     AuthType = "none"
	AuthTypeUserPass AuthType = "user-pass"
)

type AuthUserPass struct {
	User string
	Pass string
}

type Config struct {
	Host         string
	Port         int
	Domain       string
	From         string
	TLS          bool
	AuthType     AuthType
	AuthUserPass AuthUserPass
	NoNoop       bool
	SendTimeout  time.Duration
}

// SMTPConfig is the shape service configuration uses; it is converted into a
// Config before the mailer is built.
type SMTPConfig struct {
	Server       string `mapstructure:"server"`
	AuthUsername string `mapstructure:"auth_username"`
	AuthPassword string `mapstructure:"auth_password"`
	SenderEmail  string `mapstructure:"sender_email"`
	Secure       bool   `mapstructure:"secure"`
}

type rMailer struct {
	config Config
}

// NewRMailer gives you something that is thread safe and can send mail.
func NewRMailer(config Config) Mailer {
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaultSendTimeout
	}
	return rMailer{config: config}
}

func NewMailerFromSMTPConfig(smtpConfig SMTPConfig) (Mailer, error) {
	config, err := ConfigFromSMTPConfig(smtpConfig)
	if err != nil {
		return nil, fmt.Errorf("can't convert SMTPConfig to mailer config: %v", err)
	}
	return NewRMailer(config), nil
}

func (rm rMailer) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	m := mail.NewMsg()
	if err := m.From(rm.config.From); err != nil {
		return fmt.Errorf("failed to set From address: %s", err)
	}
	if err := m.To(to...); err != nil {
		return fmt.Errorf("failed to set To address: %s", err)
	}

	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := rm.buildClient()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %s", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	// The client carries its own dial/send timeout, so a hung SMTP server
	// cannot stall a scan indefinitely.
	if err := client.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail: %s", err)
	}

	return nil
}

func (rm rMailer) buildClient() (*mail.Client, error) {
	options := []mail.Option{
		mail.WithHELO(rm.config.Domain),
		mail.WithTimeout(rm.config.SendTimeout),
	}

	if rm.config.TLS {
		options = append(options, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		options = append(options, mail.WithTLSPolicy(mail.NoTLS))
	}

	if rm.config.NoNoop {
		options = append(options, mail.WithoutNoop())
	}

	if rm.config.AuthType == AuthTypeUserPass {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(rm.config.AuthUserPass.User),
			mail.WithPassword(rm.config.AuthUserPass.Pass),
		)
	}

	if rm.config.Port > 0 { // if we have a port, don't let the library guess but enforce it
		options = append(options, mail.WithPort(rm.config.Port))
	}

	return mail.NewClient(rm.config.Host, options...)
}

// ConfigFromSMTPConfig derives host, port and HELO domain from the flat
// service-config form.
func ConfigFromSMTPConfig(config SMTPConfig) (Config, error) {
	parts := strings.Split(config.Server, ":")
	host := parts[0]
	if host == "" {
		return Config{}, fmt.Errorf("can't parse host from SMTP config")
	}

	port := -1 // let the library guess
	if len(parts) == 2 {
		if _, err := fmt.Sscanf(parts[1], "%d", &port); err != nil {
			return Config{}, fmt.Errorf("can't parse port number: %v", err)
		}
	}

	emailSplit := strings.Split(config.SenderEmail, "@")
	if len(emailSplit) != 2 {
		return Config{}, fmt.Errorf("can't parse sender email from SMTP config")
	}

	authType := AuthTypeNone
	if config.AuthUsername != "" {
		authType = AuthTypeUserPass
	}

	return Config{
		Host:     host,
		Port:     port,
		Domain:   emailSplit[1],
		From:     config.SenderEmail,
		TLS:      config.Secure,
		AuthType: authType,
		AuthUserPass: AuthUserPass{
			User: config.AuthUsername,
			Pass: config.AuthPassword,
		},
	}, nil
}
