// Package procedures reads the hub's procedure records from the list store.
package procedures

import (
	"context"
	"fmt"
	"time"

	"github.com/MinaWilson92/prochub/server/listapi"
	"github.com/MinaWilson92/prochub/server/notifications"
	"github.com/MinaWilson92/prochub/share/logger"
)

const collectionProcedures = "Procedures"

type Procedure struct {
	ID                  string
	Title               string
	LOB                 string
	PrimaryOwner        string
	PrimaryOwnerEmail   string
	SecondaryOwnerEmail string
	ExpiryDate          time.Time
	HasExpiry           bool
	Status              string
	QualityScore        float64
}

// Ref converts a procedure record into the subset the notification core
// reads.
func (p Procedure) Ref() notifications.ProcedureRef {
	return notifications.ProcedureRef{
		ID:                  p.ID,
		Name:                p.Title,
		LOB:                 p.LOB,
		PrimaryOwner:        p.PrimaryOwner,
		PrimaryOwnerEmail:   p.PrimaryOwnerEmail,
		SecondaryOwnerEmail: p.SecondaryOwnerEmail,
		ExpiryDate:          p.ExpiryDate,
		QualityScore:        p.QualityScore,
	}
}

type Store struct {
	client *listapi.Client
	l      *logger.Logger
}

func NewStore(client *listapi.Client, l *logger.Logger) *Store {
	return &Store{client: client, l: l}
}

func (s *Store) List(ctx context.Context) ([]Procedure, error) {
	items, err := s.client.GetItems(ctx, collectionProcedures)
	if err != nil {
		return nil, fmt.Errorf("failed to list procedures: %w", err)
	}

	procs := make([]Procedure, 0, len(items))
	for _, item := range items {
		expiry, hasExpiry := item.Time("ExpiryDate")
		procs = append(procs, Procedure{
			ID:                  item.String("ID"),
			Title:               item.String("Title"),
			LOB:                 item.String("LOB"),
			PrimaryOwner:        item.String("PrimaryOwner"),
			PrimaryOwnerEmail:   item.String("PrimaryOwnerEmail"),
			SecondaryOwnerEmail: item.String("SecondaryOwnerEmail"),
			ExpiryDate:          expiry,
			HasExpiry:           hasExpiry,
			Status:              item.String("Status"),
			QualityScore:        item.Float("QualityScore"),
		})
	}
	return procs, nil
}
