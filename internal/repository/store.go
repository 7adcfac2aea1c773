package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one connection or one transaction.
type Store interface {
	Users() UserRepository
	Notes() NoteRepository
	Reminders() ReminderRepository
	Attachments() AttachmentRepository
	Revisions() RevisionRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// Returning an error from fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository             { return &userRepository{db: s.db} }
func (s *gormStore) Notes() NoteRepository             { return &noteRepository{db: s.db} }
func (s *gormStore) Reminders() ReminderRepository     { return &reminderRepository{db: s.db} }
func (s *gormStore) Attachments() AttachmentRepository { return &attachmentRepository{db: s.db} }
func (s *gormStore) Revisions() RevisionRepository     { return &revisionRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
