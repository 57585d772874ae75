package notifications

import (
	"context"

	"github.com/MinaWilson92/prochub/share/logger"
)

const headRole = "Head"

// Resolver computes the deduplicated set of addresses that must receive a
// notification for an event. Resolve never fails: when the configuration
// store is unreachable it degrades to the fallback address so that every
// event still produces visible evidence.
type Resolver struct {
	provider ConfigProvider
	// fallback is used when the configuration itself cannot be loaded and
	// therefore no test-mode address is known.
	fallback string
	l        *logger.Logger
}

func NewResolver(provider ConfigProvider, fallbackAddress string, l *logger.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		fallback: fallbackAddress,
		l:        l,
	}
}

// Resolve returns the recipients for the given event, in insertion order with
// duplicates removed. Address equality is exact: no case folding or other
// normalization is applied.
func (r *Resolver) Resolve(ctx context.Context, eventType EventType, lobScope string, subject *ProcedureRef) []string {
	cfg, err := r.provider.Reload(ctx)
	if err != nil {
		r.l.Errorf("failed to reload recipient configuration: %v", err)
		return []string{r.fallback}
	}

	set := newRecipientSet()

	for _, e := range cfg.GlobalCCEntries {
		if e.LOB == lobScope && e.EscalationType == string(eventType) && e.RecipientRole == headRole && e.Active {
			set.Add(e.Email)
		}
	}

	// Admins receive every notification regardless of event type or LOB.
	for _, e := range cfg.AdminEntries {
		if e.Active {
			set.Add(e.Email)
		}
	}

	if subject != nil {
		set.Add(subject.PrimaryOwnerEmail)
		set.Add(subject.SecondaryOwnerEmail)
	}

	if eventType.IsAccessEvent() {
		for _, e := range cfg.CustomGroupEntries {
			if e.EscalationType == string(eventType) && e.Active {
				set.Add(e.Email)
			}
		}
	}

	if set.Len() == 0 {
		addr := cfg.TestModeAddress
		if addr == "" {
			addr = r.fallback
		}
		r.l.Infof("no recipients resolved for %s/%s, falling back to test address", eventType, lobScope)
		return []string{addr}
	}

	return set.Values()
}

// recipientSet deduplicates addresses while preserving insertion order.
// Entries without an address are skipped silently.
type recipientSet struct {
	seen   map[string]struct{}
	values []string
}

func newRecipientSet() *recipientSet {
	return &recipientSet{seen: map[string]struct{}{}}
}

func (s *recipientSet) Add(address string) {
	if address == "" {
		return
	}
	if _, ok := s.seen[address]; ok {
		return
	}
	s.seen[address] = struct{}{}
	s.values = append(s.values, address)
}

func (s *recipientSet) Len() int {
	return len(s.values)
}

func (s *recipientSet) Values() []string {
	return s.values
}
