package notifications

import (
	"context"
	"fmt"

	"github.com/MinaWilson92/prochub/server/listapi"
	"github.com/MinaWilson92/prochub/share/logger"
)

// Config is the standing recipient configuration. It is replaced wholesale on
// every reload and never mutated in place, so concurrent readers always see a
// consistent snapshot.
type Config struct {
	GlobalCCEntries    []GlobalCCEntry
	AdminEntries       []AdminEntry
	CustomGroupEntries []CustomGroupEntry

	// TestModeAddress is the fallback recipient when nothing else resolves.
	// An event must never be sent to nobody.
	TestModeAddress string
}

type GlobalCCEntry struct {
	LOB            string
	EscalationType string
	RecipientRole  string
	Email          string
	Active         bool
}

type AdminEntry struct {
	Email  string
	Active bool
}

type CustomGroupEntry struct {
	EscalationType string
	Email          string
	Active         bool
}

// ConfigProvider hands out a fresh configuration snapshot. Reload always hits
// the store: configuration edits must take effect on the very next send, so
// staleness is judged worse than redundant fetches.
type ConfigProvider interface {
	Reload(ctx context.Context) (*Config, error)
}

const (
	collectionGlobalCC      = "GlobalCCList"
	collectionAdmins        = "AdminList"
	collectionCustomGroups  = "CustomGroups"
	collectionConfiguration = "EmailConfiguration"

	configKeyTestAddress = "testEmailAddress"
)

// ListConfigProvider loads the recipient configuration from the list store.
type ListConfigProvider struct {
	client *listapi.Client
	l      *logger.Logger
}

func NewListConfigProvider(client *listapi.Client, l *logger.Logger) *ListConfigProvider {
	return &ListConfigProvider{client: client, l: l}
}

func (p *ListConfigProvider) Reload(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	globalCC, err := p.client.GetItems(ctx, collectionGlobalCC)
	if err != nil {
		return nil, fmt.Errorf("failed to load global cc list: %w", err)
	}
	for _, item := range globalCC {
		cfg.GlobalCCEntries = append(cfg.GlobalCCEntries, GlobalCCEntry{
			LOB:            item.String("LOB"),
			EscalationType: item.String("EscalationType"),
			RecipientRole:  item.String("RecipientRole"),
			Email:          item.String("Email"),
			Active:         item.Bool("Active", true),
		})
	}

	admins, err := p.client.GetItems(ctx, collectionAdmins)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin list: %w", err)
	}
	for _, item := range admins {
		cfg.AdminEntries = append(cfg.AdminEntries, AdminEntry{
			Email:  item.String("Email"),
			Active: item.Bool("Active", true),
		})
	}

	groups, err := p.client.GetItems(ctx, collectionCustomGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom groups: %w", err)
	}
	for _, item := range groups {
		cfg.CustomGroupEntries = append(cfg.CustomGroupEntries, CustomGroupEntry{
			EscalationType: item.String("EscalationType"),
			Email:          item.String("Email"),
			Active:         item.Bool("Active", true),
		})
	}

	settings, err := p.client.GetItems(ctx, collectionConfiguration)
	if err != nil {
		return nil, fmt.Errorf("failed to load email configuration: %w", err)
	}
	for _, item := range settings {
		if item.String("ConfigKey") == configKeyTestAddress {
			cfg.TestModeAddress = item.String("ConfigValue")
		}
	}

	p.l.Debugf("config reloaded: %d global cc, %d admins, %d custom groups",
		len(cfg.GlobalCCEntries), len(cfg.AdminEntries), len(cfg.CustomGroupEntries))
	return cfg, nil
}
