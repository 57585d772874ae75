package harness

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/server/monitoring"
	"github.com/MinaWilson92/prochub/server/notifications"
	"github.com/MinaWilson92/prochub/share/logger"
)

var testLog = logger.NewLogger("test", logger.LogOutput{File: os.Stdout}, logger.LogLevelDebug)

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, _ notifications.EventType, _ string, _ *notifications.ProcedureRef) []string {
	return []string{"test@x.com"}
}

type fakeSender struct {
	success    bool
	dispatched []notifications.EventType
	vars       []map[string]string
}

func (s *fakeSender) Dispatch(_ context.Context, notificationType notifications.EventType, _ []string, vars map[string]string) notifications.DispatchResult {
	s.dispatched = append(s.dispatched, notificationType)
	s.vars = append(s.vars, vars)
	return notifications.DispatchResult{Success: s.success, Message: "transport says no"}
}

type fakeUserAudit struct {
	entries []*activitylog.UserEntry
}

func (a *fakeUserAudit) RecordUser(_ context.Context, e *activitylog.UserEntry) {
	a.entries = append(a.entries, e)
}

type fakeDigestRunner struct {
	success bool
	runs    int
}

func (d *fakeDigestRunner) RunWeeklyDigest(_ context.Context) monitoring.StartResult {
	d.runs++
	return monitoring.StartResult{Success: d.success, Message: "digest"}
}

type HarnessTestSuite struct {
	suite.Suite
	sender *fakeSender
	audit  *fakeUserAudit
	digest *fakeDigestRunner
	runner *Runner
}

func (suite *HarnessTestSuite) SetupTest() {
	suite.sender = &fakeSender{success: true}
	suite.audit = &fakeUserAudit{}
	suite.digest = &fakeDigestRunner{success: true}
	hooks := notifications.NewHooks(fakeResolver{}, suite.sender, suite.audit, testLog)
	suite.runner = NewRunner(hooks, suite.digest, testLog)
}

func (suite *HarnessTestSuite) TestAllPathsPass() {
	report := suite.runner.Run(context.Background())

	suite.Equal(7, report.Passed)
	suite.Zero(report.Warnings)
	suite.Zero(report.Failed)
	suite.Len(report.Results, 7)
	for _, result := range report.Results {
		suite.Equal(OutcomePassed, result.Outcome, result.Path)
		suite.Equal(attemptsPerPath, result.Attempts)
		suite.Empty(result.Message)
	}
	suite.Equal(attemptsPerPath, suite.digest.runs)
}

func (suite *HarnessTestSuite) TestTransportFailureClassifiedFailed() {
	suite.sender.success = false
	suite.digest.success = false

	report := suite.runner.Run(context.Background())

	// The system-action path stays green: harness-check is not on the
	// critical allow-list and therefore never reaches the transport.
	suite.Equal(1, report.Passed)
	suite.Equal(6, report.Failed)

	for _, result := range report.Results {
		if result.Outcome != OutcomeFailed {
			suite.Equal("system-action", result.Path)
			continue
		}
		suite.NotEmpty(result.Message)
	}
}

func (suite *HarnessTestSuite) TestSyntheticRecordsCarryTestPrefix() {
	suite.runner.Run(context.Background())

	for _, vars := range suite.sender.vars {
		if id, ok := vars["procedureId"]; ok {
			suite.True(strings.HasPrefix(id, TestPrefix), "procedure id %q", id)
		}
		if id, ok := vars["userId"]; ok {
			suite.True(strings.HasPrefix(id, TestPrefix), "user id %q", id)
		}
	}
	for _, entry := range suite.audit.entries {
		suite.True(strings.HasPrefix(entry.UserID, TestPrefix), "audit user id %q", entry.UserID)
	}
}

func (suite *HarnessTestSuite) TestPartialSuccessClassifiedWarning() {
	calls := 0
	result := suite.runner.runPath(context.Background(), "flaky", func(_ context.Context) (bool, string) {
		calls++
		return calls == 1, "attempt failed"
	})

	suite.Equal(OutcomeWarning, result.Outcome)
	suite.Equal(1, result.Successes)
	suite.Contains(result.Message, "attempt failed")
}

func (suite *HarnessTestSuite) TestZeroSuccessClassifiedFailed() {
	result := suite.runner.runPath(context.Background(), "dead", func(_ context.Context) (bool, string) {
		return false, "down"
	})
	suite.Equal(OutcomeFailed, result.Outcome)
}

func (suite *HarnessTestSuite) TestTwoOfThreeClassifiedPassed() {
	calls := 0
	result := suite.runner.runPath(context.Background(), "mostly", func(_ context.Context) (bool, string) {
		calls++
		return calls <= 2, "third attempt failed"
	})
	suite.Equal(OutcomePassed, result.Outcome)
	suite.Equal(2, result.Successes)
}

func TestHarnessTestSuite(t *testing.T) {
	suite.Run(t, new(HarnessTestSuite))
}
