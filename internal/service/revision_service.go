package service

import (
	"context"
	"time"

	"pensario-server/internal/domain"
	"pensario-server/internal/repository"

	"github.com/sirupsen/logrus"
)

// RevisionService exposes the history written by RecordIfChanged. Revisions are
// never created or edited through it.
type RevisionService struct {
	store   repository.Store
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewRevisionService(store repository.Store, timeout time.Duration, log logrus.FieldLogger) *RevisionService {
	return &RevisionService{
		store:   store,
		timeout: timeout,
		log:     log,
	}
}

func (s *RevisionService) ListByNote(ctx context.Context, userID, noteID string) ([]*domain.RevisionHistory, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	note, err := OwnedNote(ctx, s.store.Notes(), userID, noteID)
	if err != nil {
		return nil, err
	}
	revisions, err := s.store.Revisions().ListByNote(ctx, note.ID)
	if err != nil {
		return nil, classify(err, "list revisions")
	}
	return revisions, nil
}

func (s *RevisionService) GetByID(ctx context.Context, userID, revisionID string) (*domain.RevisionHistory, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(ctx, s.store, userID, ResourceRevision, revisionID)
	if err != nil {
		return nil, err
	}
	return handle.Revision, nil
}

func (s *RevisionService) Delete(ctx context.Context, userID, revisionID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(ctx, s.store, userID, ResourceRevision, revisionID)
	if err != nil {
		return err
	}
	if err := s.store.Revisions().Delete(ctx, handle.Revision.ID); err != nil {
		return lookup(err, ResourceRevision, "delete revision")
	}
	return nil
}
