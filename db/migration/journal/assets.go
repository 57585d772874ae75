// Package journal holds the schema migrations for the local activity-log
// journal. Assets are exposed through the same AssetNames/Asset contract the
// go-bindata migration source expects.
package journal

import (
	"fmt"
	"sort"
)

var assets = map[string]string{
	"001_init.up.sql": `
CREATE TABLE email_activity (
    entry_id TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    recipients TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    timestamp DATETIME NOT NULL,
    performed_by TEXT NOT NULL DEFAULT '',
    related_procedure_id TEXT NOT NULL DEFAULT '',
    related_user_id TEXT NOT NULL DEFAULT '',
    spooled BOOLEAN NOT NULL DEFAULT 0
);
CREATE INDEX idx_email_activity_timestamp ON email_activity (timestamp);

CREATE TABLE user_activity (
    entry_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    user_name TEXT NOT NULL DEFAULT '',
    activity_type TEXT NOT NULL,
    activity_details TEXT NOT NULL DEFAULT '',
    timestamp DATETIME NOT NULL,
    status TEXT NOT NULL DEFAULT '',
    spooled BOOLEAN NOT NULL DEFAULT 0
);
CREATE INDEX idx_user_activity_timestamp ON user_activity (timestamp);
`,
	"001_init.down.sql": `
DROP TABLE email_activity;
DROP TABLE user_activity;
`,
}

func AssetNames() []string {
	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Asset(name string) ([]byte, error) {
	sql, ok := assets[name]
	if !ok {
		return nil, fmt.Errorf("migration asset not found: %s", name)
	}
	return []byte(sql), nil
}
