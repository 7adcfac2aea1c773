package service

import (
	"context"
	"time"

	"pensario-server/internal/domain"
	"pensario-server/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReminderService struct {
	store   repository.Store
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewReminderService(store repository.Store, timeout time.Duration, log logrus.FieldLogger) *ReminderService {
	return &ReminderService{
		store:   store,
		timeout: timeout,
		log:     log,
	}
}

// Create schedules a reminder on a note the caller owns. The reminder's owner is
// copied from the note.
func (s *ReminderService) Create(ctx context.Context, userID string, req *domain.CreateReminderRequest) (*domain.Reminder, error) {
	if req.NoteID == "" || req.RemindAt == nil {
		return nil, invalidInput("note_id and remind_at are required")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	note, err := OwnedNote(ctx, s.store.Notes(), userID, req.NoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reminder := &domain.Reminder{
		ID:        uuid.New().String(),
		NoteID:    note.ID,
		UserID:    note.UserID,
		RemindAt:  req.RemindAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Reminders().Create(ctx, reminder); err != nil {
		return nil, classify(err, "create reminder")
	}
	return reminder, nil
}

// List returns every reminder on the caller's notes, soonest first, with the
// note title attached.
func (s *ReminderService) List(ctx context.Context, userID string) ([]*domain.Reminder, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	reminders, err := s.store.Reminders().ListByUser(ctx, userID)
	if err != nil {
		return nil, classify(err, "list reminders")
	}
	return reminders, nil
}

func (s *ReminderService) ListByNote(ctx context.Context, userID, noteID string) ([]*domain.Reminder, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	note, err := OwnedNote(ctx, s.store.Notes(), userID, noteID)
	if err != nil {
		return nil, err
	}
	reminders, err := s.store.Reminders().ListByNote(ctx, note.ID)
	if err != nil {
		return nil, classify(err, "list reminders")
	}
	return reminders, nil
}

func (s *ReminderService) Update(ctx context.Context, userID, reminderID string, req *domain.UpdateReminderRequest) (*domain.Reminder, error) {
	if req.RemindAt == nil {
		return nil, invalidInput("remind_at is required")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(ctx, s.store, userID, ResourceReminder, reminderID)
	if err != nil {
		return nil, err
	}

	reminder := handle.Reminder
	reminder.RemindAt = req.RemindAt.UTC()
	reminder.UserID = handle.Note.UserID
	if err := s.store.Reminders().Update(ctx, reminder); err != nil {
		return nil, lookup(err, ResourceReminder, "update reminder")
	}
	return reminder, nil
}

func (s *ReminderService) Delete(ctx context.Context, userID, reminderID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(ctx, s.store, userID, ResourceReminder, reminderID)
	if err != nil {
		return err
	}
	if err := s.store.Reminders().Delete(ctx, handle.Reminder.ID); err != nil {
		return lookup(err, ResourceReminder, "delete reminder")
	}
	return nil
}
