package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"pensario-server/internal/domain"
	"pensario-server/internal/repository"
	"pensario-server/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxTitleLength    = 128
	maxCategoryLength = 64
)

type NoteService struct {
	store   repository.Store
	blobs   storage.BlobStore
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewNoteService(store repository.Store, blobs storage.BlobStore, timeout time.Duration, log logrus.FieldLogger) *NoteService {
	return &NoteService{
		store:   store,
		blobs:   blobs,
		timeout: timeout,
		log:     log,
	}
}

func (s *NoteService) Create(ctx context.Context, userID string, req *domain.CreateNoteRequest) (*domain.Note, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validateCategory(req.Category); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()
	note := &domain.Note{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            req.Title,
		Content:          req.Content,
		Category:         req.Category,
		ConsultationDate: utcPtr(req.ConsultationDate),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Notes().Create(ctx, note); err != nil {
		return nil, classify(err, "create note")
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, userID string) ([]*domain.Note, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	notes, err := s.store.Notes().ListByUser(ctx, userID)
	if err != nil {
		return nil, classify(err, "list notes")
	}
	return notes, nil
}

func (s *NoteService) GetByID(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return OwnedNote(ctx, s.store.Notes(), userID, noteID)
}

// Update applies only the supplied fields. A supplied content that differs from
// the stored one records a revision in the same transaction.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	if req.Title.Set {
		if req.Title.Null {
			return nil, invalidInput("title is required")
		}
		if err := validateTitle(req.Title.Value); err != nil {
			return nil, err
		}
	}
	if err := validateCategory(req.Category.Ptr()); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var updated *domain.Note
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		note, err := OwnedNoteForUpdate(ctx, tx.Notes(), userID, noteID)
		if err != nil {
			return err
		}

		var nextContent *string
		if req.Content.Set {
			v := req.Content.Value
			nextContent = &v
		}
		if _, err := RecordIfChanged(ctx, tx.Revisions(), note.ID, note.Content, nextContent); err != nil {
			return classify(err, "record revision")
		}

		if req.Title.Set {
			note.Title = req.Title.Value
		}
		if nextContent != nil {
			note.Content = *nextContent
		}
		if req.Category.Set {
			note.Category = req.Category.Ptr()
		}
		if req.ConsultationDate.Set {
			note.ConsultationDate = utcPtr(req.ConsultationDate.Ptr())
		}

		if err := tx.Notes().Update(ctx, note); err != nil {
			return lookup(err, ResourceNote, "update note")
		}
		updated = note
		return nil
	})
	if err != nil {
		return nil, classify(err, "update note")
	}
	return updated, nil
}

// Delete removes the note and every reminder, attachment and revision under it in
// one transaction. Attachment files are removed after commit; a failure there
// leaves an orphaned file, which is logged.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var paths []string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		note, err := OwnedNoteForUpdate(ctx, tx.Notes(), userID, noteID)
		if err != nil {
			return err
		}

		attachments, err := tx.Attachments().ListByNote(ctx, note.ID)
		if err != nil {
			return classify(err, "list attachments")
		}
		paths = paths[:0]
		for _, a := range attachments {
			paths = append(paths, a.FilePath)
		}

		if _, err := tx.Reminders().DeleteByNote(ctx, note.ID); err != nil {
			return classify(err, "delete reminders")
		}
		if _, err := tx.Attachments().DeleteByNote(ctx, note.ID); err != nil {
			return classify(err, "delete attachments")
		}
		if _, err := tx.Revisions().DeleteByNote(ctx, note.ID); err != nil {
			return classify(err, "delete revisions")
		}
		if err := tx.Notes().Delete(ctx, note.ID); err != nil {
			return lookup(err, ResourceNote, "delete note")
		}
		return nil
	})
	if err != nil {
		return classify(err, "delete note")
	}

	for _, p := range paths {
		if err := s.blobs.Remove(ctx, p); err != nil && !isMissingBlob(err) {
			s.log.WithFields(logrus.Fields{
				"note_id": noteID,
				"path":    p,
				"error":   err.Error(),
			}).Warn("orphaned file: attachment blob not removed after note delete")
		}
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return invalidInput("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalidInput("title must be at most 128 characters")
	}
	return nil
}

func validateCategory(category *string) error {
	if category != nil && utf8.RuneCountInString(*category) > maxCategoryLength {
		return invalidInput("category must be at most 64 characters")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
