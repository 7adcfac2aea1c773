package service

import (
	"context"
	"time"

	"pensario-server/internal/domain"
	"pensario-server/internal/metrics"
	"pensario-server/internal/repository"

	"github.com/google/uuid"
)

// RecordIfChanged appends a revision when next is supplied and differs from prior
// byte for byte. It must run inside the transaction that overwrites the content,
// before the write, with prior read in that same transaction.
func RecordIfChanged(ctx context.Context, revisions repository.RevisionRepository, noteID, prior string, next *string) (bool, error) {
	if next == nil || *next == prior {
		return false, nil
	}

	revision := &domain.RevisionHistory{
		ID:         uuid.New().String(),
		NoteID:     noteID,
		OldContent: prior,
		NewContent: *next,
		CreatedAt:  time.Now().UTC(),
	}
	if err := revisions.Create(ctx, revision); err != nil {
		return false, err
	}

	metrics.RevisionsRecorded.Inc()
	return true, nil
}
