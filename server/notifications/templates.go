package notifications

import (
	"context"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/MinaWilson92/prochub/server/listapi"
	"github.com/MinaWilson92/prochub/share/logger"
)

const (
	collectionTemplates = "EmailTemplates"

	// Templates change rarely; a short cache bounds the staleness without
	// hitting the store on every send. The always-fresh rule applies to
	// recipient configuration, not templates.
	templateCacheTTL = 30 * time.Second
)

type Template struct {
	Type        string
	Subject     string
	HTMLContent string
}

// TemplateSource looks up the mail template for a notification type.
type TemplateSource interface {
	Get(ctx context.Context, eventType EventType) (Template, bool)
}

// TemplateStore reads templates from the EmailTemplates collection, falling
// back to the built-in defaults when the collection has no active row for a
// type.
type TemplateStore struct {
	client *listapi.Client
	cache  *cache.Cache
	l      *logger.Logger
}

func NewTemplateStore(client *listapi.Client, l *logger.Logger) *TemplateStore {
	return &TemplateStore{
		client: client,
		cache:  cache.New(templateCacheTTL, 2*templateCacheTTL),
		l:      l,
	}
}

func (s *TemplateStore) Get(ctx context.Context, eventType EventType) (Template, bool) {
	key := string(eventType)
	if cached, ok := s.cache.Get(key); ok {
		tpl := cached.(Template)
		return tpl, tpl.Type != ""
	}

	tpl, ok := s.load(ctx, key)
	if !ok {
		tpl, ok = defaultTemplates[key]
	}
	// Negative results are cached too (zero Template) so a missing row does
	// not cost a store round-trip per send.
	s.cache.Set(key, tpl, cache.DefaultExpiration)
	return tpl, ok
}

func (s *TemplateStore) load(ctx context.Context, templateType string) (Template, bool) {
	items, err := s.client.GetItems(ctx, collectionTemplates)
	if err != nil {
		s.l.Errorf("failed to load templates: %v", err)
		return Template{}, false
	}

	for _, item := range items {
		if item.String("TemplateType") != templateType {
			continue
		}
		if !item.Bool("IsActive", true) {
			continue
		}
		return Template{
			Type:        templateType,
			Subject:     item.String("Subject"),
			HTMLContent: item.String("HTMLContent"),
		}, true
	}
	return Template{}, false
}

// Render substitutes {{key}} placeholders from vars. Placeholders without a
// matching variable are left verbatim.
func Render(text string, vars map[string]string) string {
	for key, value := range vars {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return text
}
