package notifications_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/server/notifications"
)

type StaticTemplateSource struct {
	templates map[notifications.EventType]notifications.Template
}

func (s *StaticTemplateSource) Get(_ context.Context, eventType notifications.EventType) (notifications.Template, bool) {
	tpl, ok := s.templates[eventType]
	return tpl, ok
}

type RecordingTransport struct {
	err      error
	sends    int
	to       []string
	subject  string
	htmlBody string
}

func (t *RecordingTransport) Send(_ context.Context, to []string, subject string, htmlBody string) error {
	t.sends++
	t.to = to
	t.subject = subject
	t.htmlBody = htmlBody
	return t.err
}

type RecordingEmailAudit struct {
	entries []*activitylog.EmailEntry
}

func (a *RecordingEmailAudit) RecordEmail(_ context.Context, e *activitylog.EmailEntry) {
	a.entries = append(a.entries, e)
}

type DispatcherTestSuite struct {
	suite.Suite
	templates  *StaticTemplateSource
	transport  *RecordingTransport
	audit      *RecordingEmailAudit
	dispatcher *notifications.Dispatcher
}

func (suite *DispatcherTestSuite) SetupTest() {
	suite.templates = &StaticTemplateSource{
		templates: map[notifications.EventType]notifications.Template{
			notifications.EventProcedureUploaded: {
				Type:        string(notifications.EventProcedureUploaded),
				Subject:     "New Procedure: {{procedureName}}",
				HTMLContent: "<p>{{procedureName}} uploaded by {{ownerName}}</p>",
			},
		},
	}
	suite.transport = &RecordingTransport{}
	suite.audit = &RecordingEmailAudit{}
	suite.dispatcher = notifications.NewDispatcher(suite.templates, suite.transport, suite.audit, testLog)
}

func (suite *DispatcherTestSuite) TestSuccessfulDispatch() {
	res := suite.dispatcher.Dispatch(context.Background(), notifications.EventProcedureUploaded,
		[]string{"a@x.com", "b@x.com"},
		map[string]string{"procedureName": "Onboarding", "ownerName": "Jo", "procedureId": "42", "performedBy": "u1"})

	suite.True(res.Success)
	suite.NotEmpty(res.NotificationID)
	suite.Equal(1, suite.transport.sends)
	suite.Equal("New Procedure: Onboarding", suite.transport.subject)
	suite.Equal("<p>Onboarding uploaded by Jo</p>", suite.transport.htmlBody)

	suite.Require().Len(suite.audit.entries, 1)
	entry := suite.audit.entries[0]
	suite.Equal(res.NotificationID, entry.ID)
	suite.Equal(string(notifications.EventProcedureUploaded), entry.ActivityType)
	suite.Equal([]string{"a@x.com", "b@x.com"}, entry.Recipients)
	suite.True(entry.Success)
	suite.Equal("42", entry.RelatedProcedureID)
	suite.Equal("u1", entry.PerformedBy)
}

func (suite *DispatcherTestSuite) TestMissingTemplateStillSendsAndLogs() {
	res := suite.dispatcher.Dispatch(context.Background(), notifications.EventSystemAction,
		[]string{"a@x.com"}, nil)

	suite.False(res.Success)
	suite.Equal(1, suite.transport.sends, "the send must still be attempted")
	suite.Contains(suite.transport.htmlBody, "template unavailable")

	suite.Require().Len(suite.audit.entries, 1)
	suite.False(suite.audit.entries[0].Success)
	suite.Equal("true", suite.audit.entries[0].Details["templateMissing"])
}

func (suite *DispatcherTestSuite) TestTransportFailureStillLogged() {
	suite.transport.err = errors.New("connection refused")

	res := suite.dispatcher.Dispatch(context.Background(), notifications.EventProcedureUploaded,
		[]string{"a@x.com"}, map[string]string{"procedureName": "P"})

	suite.False(res.Success)
	suite.Contains(res.Message, "connection refused")
	suite.Require().Len(suite.audit.entries, 1)
	suite.False(suite.audit.entries[0].Success)
	suite.Equal("connection refused", suite.audit.entries[0].Details["error"])
}

func (suite *DispatcherTestSuite) TestOneAuditRowPerDispatch() {
	suite.dispatcher.Dispatch(context.Background(), notifications.EventProcedureUploaded, []string{"a@x.com"}, nil)
	suite.dispatcher.Dispatch(context.Background(), notifications.EventSystemAction, []string{"a@x.com"}, nil)
	suite.transport.err = errors.New("down")
	suite.dispatcher.Dispatch(context.Background(), notifications.EventProcedureUploaded, []string{"a@x.com"}, nil)

	suite.Len(suite.audit.entries, 3)
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func TestRenderLeavesUnresolvedPlaceholders(t *testing.T) {
	got := notifications.Render("Hello {{name}}, {{unknown}} stays", map[string]string{"name": "Jo"})
	if got != "Hello Jo, {{unknown}} stays" {
		t.Fatalf("unexpected render result: %q", got)
	}
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	got := notifications.Render("{{a}} and {{a}}", map[string]string{"a": "x"})
	if got != "x and x" {
		t.Fatalf("unexpected render result: %q", got)
	}
}
