package activitylog

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	migration "github.com/MinaWilson92/prochub/db/migration/journal"
	"github.com/MinaWilson92/prochub/db/sqlite"
)

const journalFilename = "activity_journal.db"

// Journal mirrors activity rows into a local sqlite database. Rows written
// while the list store was unreachable are flagged spooled.
type Journal struct {
	db *sqlx.DB
}

func NewJournal(dataDir string, dataSourceOptions sqlite.DataSourceOptions) (*Journal, error) {
	db, err := sqlite.New(
		path.Join(dataDir, journalFilename),
		migration.AssetNames(),
		migration.Asset,
		dataSourceOptions,
	)
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// NewJournalInMemory is used by tests.
func NewJournalInMemory() (*Journal, error) {
	db, err := sqlite.New(":memory:", migration.AssetNames(), migration.Asset, sqlite.DataSourceOptions{})
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

type sqlEmailEntry struct {
	EntryID            string    `db:"entry_id"`
	ActivityType       string    `db:"activity_type"`
	Recipients         string    `db:"recipients"`
	Success            bool      `db:"success"`
	Details            string    `db:"details"`
	Timestamp          time.Time `db:"timestamp"`
	PerformedBy        string    `db:"performed_by"`
	RelatedProcedureID string    `db:"related_procedure_id"`
	RelatedUserID      string    `db:"related_user_id"`
	Spooled            bool      `db:"spooled"`
}

func (j *Journal) SaveEmailEntry(ctx context.Context, e *EmailEntry, spooled bool) error {
	_, err := j.db.NamedExecContext(ctx,
		`INSERT INTO email_activity (
			entry_id, activity_type, recipients, success, details,
			timestamp, performed_by, related_procedure_id, related_user_id, spooled
		) VALUES (
			:entry_id, :activity_type, :recipients, :success, :details,
			:timestamp, :performed_by, :related_procedure_id, :related_user_id, :spooled
		)`,
		sqlEmailEntry{
			EntryID:            e.ID,
			ActivityType:       e.ActivityType,
			Recipients:         strings.Join(e.Recipients, recipientsSeparator),
			Success:            e.Success,
			Details:            marshalDetails(e.Details),
			Timestamp:          e.Timestamp,
			PerformedBy:        e.PerformedBy,
			RelatedProcedureID: e.RelatedProcedureID,
			RelatedUserID:      e.RelatedUserID,
			Spooled:            spooled,
		},
	)
	return err
}

type sqlUserEntry struct {
	EntryID      string    `db:"entry_id"`
	UserID       string    `db:"user_id"`
	UserName     string    `db:"user_name"`
	ActivityType string    `db:"activity_type"`
	Details      string    `db:"activity_details"`
	Timestamp    time.Time `db:"timestamp"`
	Status       string    `db:"status"`
	Spooled      bool      `db:"spooled"`
}

func (j *Journal) SaveUserEntry(ctx context.Context, e *UserEntry, spooled bool) error {
	_, err := j.db.NamedExecContext(ctx,
		`INSERT INTO user_activity (
			entry_id, user_id, user_name, activity_type, activity_details,
			timestamp, status, spooled
		) VALUES (
			:entry_id, :user_id, :user_name, :activity_type, :activity_details,
			:timestamp, :status, :spooled
		)`,
		sqlUserEntry{
			EntryID:      e.ID,
			UserID:       e.UserID,
			UserName:     e.UserName,
			ActivityType: e.ActivityType,
			Details:      marshalDetails(e.Details),
			Timestamp:    e.Timestamp,
			Status:       e.Status,
			Spooled:      spooled,
		},
	)
	return err
}

func (j *Journal) EmailEntriesSince(ctx context.Context, since time.Time) ([]EmailEntry, error) {
	var rows []sqlEmailEntry
	err := j.db.SelectContext(ctx, &rows,
		"SELECT * FROM email_activity WHERE timestamp >= ? ORDER BY timestamp ASC", since)
	if err != nil {
		return nil, err
	}

	entries := make([]EmailEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EmailEntry{
			ID:                 row.EntryID,
			ActivityType:       row.ActivityType,
			Recipients:         splitRecipients(row.Recipients),
			Success:            row.Success,
			Details:            unmarshalDetails(row.Details),
			Timestamp:          row.Timestamp,
			PerformedBy:        row.PerformedBy,
			RelatedProcedureID: row.RelatedProcedureID,
			RelatedUserID:      row.RelatedUserID,
		})
	}
	return entries, nil
}

// SpooledEmailCount reports rows that never reached the list store.
func (j *Journal) SpooledEmailCount(ctx context.Context) (int, error) {
	var count int
	err := j.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM email_activity WHERE spooled = 1")
	return count, err
}

func (j *Journal) Close() error {
	return j.db.Close()
}
