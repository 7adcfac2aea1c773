package service

import (
	"context"

	"pensario-server/internal/domain"
	"pensario-server/internal/repository"
)

type Resource string

const (
	ResourceNote       Resource = "note"
	ResourceReminder   Resource = "reminder"
	ResourceAttachment Resource = "attachment"
	ResourceRevision   Resource = "revision"
)

// ResourceHandle is an authorized resource plus the note that grants access to it.
type ResourceHandle struct {
	Resource   Resource
	Note       *domain.Note
	Reminder   *domain.Reminder
	Attachment *domain.Attachment
	Revision   *domain.RevisionHistory
}

// Authorize resolves the ownership chain for a note-scoped resource. Missing
// and foreign resources are both reported as NotFound. It works against the
// plain store or a transaction-bound one.
func Authorize(ctx context.Context, store repository.Store, callerID string, resource Resource, id string) (*ResourceHandle, error) {
	handle := &ResourceHandle{Resource: resource}
	var err error

	switch resource {
	case ResourceNote:
		handle.Note, err = OwnedNote(ctx, store.Notes(), callerID, id)
	case ResourceReminder:
		handle.Reminder, handle.Note, err = OwnedReminder(ctx, store.Reminders(), store.Notes(), callerID, id)
	case ResourceAttachment:
		handle.Attachment, handle.Note, err = OwnedAttachment(ctx, store.Attachments(), store.Notes(), callerID, id)
	case ResourceRevision:
		handle.Revision, handle.Note, err = OwnedRevision(ctx, store.Revisions(), store.Notes(), callerID, id)
	default:
		return nil, invalidInput("unknown resource kind")
	}
	if err != nil {
		return nil, err
	}
	return handle, nil
}

func OwnedNote(ctx context.Context, notes repository.NoteRepository, callerID, noteID string) (*domain.Note, error) {
	return ownedNote(ctx, notes.FindByID, callerID, noteID, ResourceNote)
}

// OwnedNoteForUpdate is OwnedNote with a row lock, for use inside a transaction.
func OwnedNoteForUpdate(ctx context.Context, notes repository.NoteRepository, callerID, noteID string) (*domain.Note, error) {
	return ownedNote(ctx, notes.FindByIDForUpdate, callerID, noteID, ResourceNote)
}

func OwnedReminder(ctx context.Context, reminders repository.ReminderRepository, notes repository.NoteRepository, callerID, id string) (*domain.Reminder, *domain.Note, error) {
	if id == "" || callerID == "" {
		return nil, nil, notFound(ResourceReminder)
	}
	reminder, err := reminders.FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookup(err, ResourceReminder, "load reminder")
	}
	note, err := ownedNote(ctx, notes.FindByID, callerID, reminder.NoteID, ResourceReminder)
	if err != nil {
		return nil, nil, err
	}
	return reminder, note, nil
}

func OwnedAttachment(ctx context.Context, attachments repository.AttachmentRepository, notes repository.NoteRepository, callerID, id string) (*domain.Attachment, *domain.Note, error) {
	if id == "" || callerID == "" {
		return nil, nil, notFound(ResourceAttachment)
	}
	attachment, err := attachments.FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookup(err, ResourceAttachment, "load attachment")
	}
	note, err := ownedNote(ctx, notes.FindByID, callerID, attachment.NoteID, ResourceAttachment)
	if err != nil {
		return nil, nil, err
	}
	return attachment, note, nil
}

func OwnedRevision(ctx context.Context, revisions repository.RevisionRepository, notes repository.NoteRepository, callerID, id string) (*domain.RevisionHistory, *domain.Note, error) {
	if id == "" || callerID == "" {
		return nil, nil, notFound(ResourceRevision)
	}
	revision, err := revisions.FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookup(err, ResourceRevision, "load revision")
	}
	note, err := ownedNote(ctx, notes.FindByID, callerID, revision.NoteID, ResourceRevision)
	if err != nil {
		return nil, nil, err
	}
	return revision, note, nil
}

// ownedNote reports failures as the requested resource so a foreign parent
// note never reveals itself.
func ownedNote(ctx context.Context, find func(context.Context, string) (*domain.Note, error), callerID, noteID string, as Resource) (*domain.Note, error) {
	if noteID == "" || callerID == "" {
		return nil, notFound(as)
	}
	note, err := find(ctx, noteID)
	if err != nil {
		return nil, lookup(err, as, "load note")
	}
	if note.UserID != callerID {
		return nil, notFound(as)
	}
	return note, nil
}
