package rmailer_test

import (
	"context"
	"testing"

	smtpmock "github.com/mocktools/go-smtp-mock/v2"
	"github.com/stretchr/testify/suite"

	"github.com/MinaWilson92/prochub/server/notifications/channels/rmailer"
)

type MailTestSuite struct {
	suite.Suite
	server *smtpmock.Server
	mailer rmailer.Mailer
}

func (ts *MailTestSuite) SetupSuite() {
	ts.server = smtpmock.New(smtpmock.ConfigurationAttr{
		MultipleMessageReceiving: true,
	})
	ts.NoError(ts.server.Start())

	ts.mailer = rmailer.NewRMailer(rmailer.Config{
		Host:     "localhost",
		Port:     ts.server.PortNumber(),
		Domain:   "example.com",
		From:     "hub@example.com",
		TLS:      false,
		AuthType: rmailer.AuthTypeNone,
		NoNoop:   true,
	})
}

func (ts *MailTestSuite) TearDownSuite() {
	ts.NoError(ts.server.Stop())
}

func (ts *MailTestSuite) TestMailSent() {
	ts.NoError(ts.mailer.Send(context.Background(),
		[]string{"head@example.com", "admin+hub@some.mail.com"},
		"New Procedure Uploaded",
		"<p>procedure <b>Onboarding</b> uploaded</p>"))

	ts.ExpectMessage([]string{"head@example.com", "admin+hub@some.mail.com"},
		"New Procedure Uploaded",
		"text/html; charset=UTF-8",
		"<p>procedure <b>Onboarding</b> uploaded</p>")
}

func (ts *MailTestSuite) TestCancelledContextStopsSend() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ts.Error(ts.mailer.Send(ctx, []string{"head@example.com"}, "subject", "body"))
}

func (ts *MailTestSuite) TestMailSMTPConfigCompatibility() {
	config, err := rmailer.ConfigFromSMTPConfig(rmailer.SMTPConfig{
		Server:       "smtp.somedomain.com:2525",
		AuthUsername: "hub-user",
		AuthPassword: "hub-password",
		SenderEmail:  "hub@somedomain.com",
		Secure:       true,
	})

	ts.NoError(err)

	ts.Equal(rmailer.Config{
		Host:     "smtp.somedomain.com",
		Port:     2525,
		Domain:   "somedomain.com",
		From:     "hub@somedomain.com",
		TLS:      true,
		AuthType: rmailer.AuthTypeUserPass,
		AuthUserPass: rmailer.AuthUserPass{
			User: "hub-user",
			Pass: "hub-password",
		},
		NoNoop: false,
	}, config)
}

func (ts *MailTestSuite) TestMailSMTPConfigWithoutPort() {
	config, err := rmailer.ConfigFromSMTPConfig(rmailer.SMTPConfig{
		Server:      "smtp.somedomain.com",
		SenderEmail: "hub@somedomain.com",
	})

	ts.NoError(err)
	ts.Equal(-1, config.Port)
	ts.Equal(rmailer.AuthTypeNone, config.AuthType)
}

func (ts *MailTestSuite) TestMailSMTPConfigBadHost() {
	_, err := rmailer.ConfigFromSMTPConfig(rmailer.SMTPConfig{
		Server:      ":25",
		SenderEmail: "hub@somedomain.com",
	})
	ts.Error(err)
}

func (ts *MailTestSuite) ExpectMessage(to []string, subject string, contentType string, content string) {
	messages := ts.server.Messages()
	if !ts.NotEmpty(messages) {
		return
	}
	receivedMail := rmailer.ReceivedMail{Message: messages[len(messages)-1]}

	ts.Equal(to, receivedMail.GetTo())
	ts.Equal(subject, receivedMail.GetSubject())
	ts.Equal(contentType, receivedMail.GetContentType())
	ts.Equal(content, receivedMail.GetContent())
}

func TestMailTestSuite(t *testing.T) {
	suite.Run(t, new(MailTestSuite))
}
