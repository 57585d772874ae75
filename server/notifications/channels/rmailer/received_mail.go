package rmailer

import (
	"strings"

	smtpmock "github.com/mocktools/go-smtp-mock/v2"
)

// ReceivedMail gives test code structured access to a raw message captured by
// the mock SMTP server.
type ReceivedMail struct {
	smtpmock.Message
}

func (r ReceivedMail) breakDown() []string {
	return strings.Split(r.MsgRequest(), "\r\n")
}

func (r ReceivedMail) headerValue(prefix string) (string, bool) {
	for _, line := range r.breakDown() {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix), true
		}
	}
	return "", false
}

func (r ReceivedMail) GetTo() []string {
	to, ok := r.headerValue("To: ")
	if !ok {
		return nil
	}
	rawMails := strings.Split(to, ">, <")
	if len(rawMails) > 0 {
		rawMails[0] = strings.TrimPrefix(rawMails[0], "<")
		last := len(rawMails) - 1
		rawMails[last] = strings.TrimSuffix(rawMails[last], ">")
	}
	return rawMails
}

func (r ReceivedMail) GetSubject() string {
	subject, _ := r.headerValue("Subject: ")
	return subject
}

func (r ReceivedMail) GetContentType() string {
	contentType, _ := r.headerValue("Content-Type: ")
	return contentType
}

func (r ReceivedMail) GetContent() string {
	request := r.MsgRequest()
	from := strings.Index(request, "\r\n\r\n")
	if from < 0 {
		return ""
	}
	return strings.TrimSuffix(request[from+4:], "\r\n")
}
