package activitylog_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/server/listapi"
	"github.com/MinaWilson92/prochub/share/logger"
)

var testLog = logger.NewLogger("test", logger.LogOutput{File: os.Stdout}, logger.LogLevelDebug)

type FakeListStore struct {
	addErr  error
	getErr  error
	items   []listapi.Item
	added   []map[string]interface{}
	addedTo []string
}

func (s *FakeListStore) AddItem(_ context.Context, collection string, fields map[string]interface{}) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, fields)
	s.addedTo = append(s.addedTo, collection)
	return nil
}

func (s *FakeListStore) GetItems(_ context.Context, _ string) ([]listapi.Item, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.items, nil
}

type ActivityLogTestSuite struct {
	suite.Suite
	store   *FakeListStore
	journal *activitylog.Journal
	log     *activitylog.Log
}

func (suite *ActivityLogTestSuite) SetupTest() {
	suite.store = &FakeListStore{}
	journal, err := activitylog.NewJournalInMemory()
	suite.Require().NoError(err)
	suite.journal = journal
	suite.log = activitylog.New(suite.store, journal, testLog)
}

func (suite *ActivityLogTestSuite) TearDownTest() {
	suite.NoError(suite.journal.Close())
}

func (suite *ActivityLogTestSuite) TestRecordEmailWritesStoreAndJournal() {
	entry := activitylog.NewEmailEntry("new-procedure-uploaded").
		WithRecipients([]string{"a@x.com", "b@x.com"}).
		WithSuccess(true).
		WithDetail("subject", "New Procedure: P").
		WithProcedure("42")

	suite.log.RecordEmail(context.Background(), entry)

	suite.NotEmpty(entry.ID, "an id is assigned on record")
	suite.Require().Len(suite.store.added, 1)
	suite.Equal("EmailActivityLog", suite.store.addedTo[0])
	suite.Equal("a@x.com;b@x.com", suite.store.added[0]["Recipients"])

	entries, err := suite.journal.EmailEntriesSince(context.Background(), time.Now().Add(-time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal([]string{"a@x.com", "b@x.com"}, entries[0].Recipients)
	suite.Equal("New Procedure: P", entries[0].Details["subject"])
	suite.Equal("42", entries[0].RelatedProcedureID)

	spooled, err := suite.journal.SpooledEmailCount(context.Background())
	suite.Require().NoError(err)
	suite.Equal(0, spooled)
}

func (suite *ActivityLogTestSuite) TestStoreFailureMarksEntrySpooled() {
	suite.store.addErr = errors.New("store unreachable")

	suite.log.RecordEmail(context.Background(), activitylog.NewEmailEntry("system-notification").
		WithRecipients([]string{"a@x.com"}))

	spooled, err := suite.journal.SpooledEmailCount(context.Background())
	suite.Require().NoError(err)
	suite.Equal(1, spooled, "the journal keeps rows the store rejected")
}

func (suite *ActivityLogTestSuite) TestRecordUserWritesStoreAndJournal() {
	suite.log.RecordUser(context.Background(), activitylog.NewUserEntry("u1", "PROCEDURE_UPLOADED").
		WithUserName("Jo").
		WithDetail("procedureId", "42").
		WithStatus("SUCCESS"))

	suite.Require().Len(suite.store.added, 1)
	suite.Equal("UserActivityLog", suite.store.addedTo[0])
	suite.Equal("u1", suite.store.added[0]["UserID"])
	suite.Equal("SUCCESS", suite.store.added[0]["Status"])
}

func (suite *ActivityLogTestSuite) TestRecordNeverReturnsOrPanics() {
	suite.store.addErr = errors.New("down")

	suite.NotPanics(func() {
		suite.log.RecordEmail(context.Background(), activitylog.NewEmailEntry("t"))
		suite.log.RecordUser(context.Background(), activitylog.NewUserEntry("u", "t"))
		suite.log.RecordEmail(context.Background(), nil)
		suite.log.RecordUser(context.Background(), nil)
	})
}

func (suite *ActivityLogTestSuite) TestEmailEntriesSinceReadsStore() {
	suite.store.items = []listapi.Item{
		{
			"Title":      "procedure-expiring",
			"Recipients": "a@x.com",
			"Success":    true,
			"Timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
		{
			"Title":      "stale-entry",
			"Recipients": "b@x.com",
			"Timestamp":  time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339),
		},
	}

	entries, err := suite.log.EmailEntriesSince(context.Background(), time.Now().Add(-time.Hour))
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("procedure-expiring", entries[0].ActivityType)
}

func (suite *ActivityLogTestSuite) TestEmailEntriesSinceFallsBackToJournal() {
	suite.log.RecordEmail(context.Background(), activitylog.NewEmailEntry("weekly-digest").
		WithRecipients([]string{"adm@x.com"}).
		WithSuccess(true))

	suite.store.getErr = errors.New("store down")

	entries, err := suite.log.EmailEntriesSince(context.Background(), time.Now().Add(-time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("weekly-digest", entries[0].ActivityType)
}

func TestActivityLogTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityLogTestSuite))
}
