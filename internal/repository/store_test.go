package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"pensario-server/internal/database"
	"pensario-server/internal/domain"

	"gorm.io/driver/sqlite"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	return NewStore(db)
}

func seedNote(t *testing.T, s Store, id, userID string) *domain.Note {
	t.Helper()
	note := &domain.Note{ID: id, UserID: userID, Title: "title " + id}
	if err := s.Notes().Create(context.Background(), note); err != nil {
		t.Fatalf("create note: %v", err)
	}
	return note
}

func TestUserRepository_UsernameIsCaseSensitiveAndUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Users().Create(ctx, &domain.User{ID: "u1", Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err := s.Users().UsernameExists(ctx, "Alice")
	if err != nil {
		t.Fatalf("UsernameExists() error = %v", err)
	}
	if exists {
		t.Error("UsernameExists(\"Alice\") = true, want false")
	}

	if err := s.Users().Create(ctx, &domain.User{ID: "u2", Username: "Alice", PasswordHash: "h"}); err != nil {
		t.Errorf("Create() differently-cased username error = %v", err)
	}

	err = s.Users().Create(ctx, &domain.User{ID: "u3", Username: "alice", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicate", err)
	}

	if _, err := s.Users().FindByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByUsername() error = %v, want ErrNotFound", err)
	}
}

func TestNoteRepository_ListByUserIsScoped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedNote(t, s, "n1", "alice")
	seedNote(t, s, "n2", "alice")
	seedNote(t, s, "n3", "bob")

	notes, err := s.Notes().ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("ListByUser() len = %d, want 2", len(notes))
	}
	for _, n := range notes {
		if n.UserID != "alice" {
			t.Errorf("note %s owned by %s leaked into alice's list", n.ID, n.UserID)
		}
	}
}

func TestNoteRepository_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	note := seedNote(t, s, "n1", "alice")
	note.Content = "changed"
	if err := s.Notes().Update(ctx, note); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := s.Notes().FindByIDForUpdate(ctx, "n1")
	if err != nil {
		t.Fatalf("FindByIDForUpdate() error = %v", err)
	}
	if got.Content != "changed" || got.UserID != "alice" {
		t.Errorf("note after update = %+v", got)
	}

	if err := s.Notes().Update(ctx, &domain.Note{ID: "missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() missing error = %v, want ErrNotFound", err)
	}
	if err := s.Notes().Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() missing error = %v, want ErrNotFound", err)
	}
}

func TestReminderRepository_ListByUserFollowsNoteOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedNote(t, s, "n1", "alice")
	seedNote(t, s, "n2", "bob")

	now := time.Now().UTC()
	for _, r := range []*domain.Reminder{
		{ID: "r1", NoteID: "n1", UserID: "alice", RemindAt: now.Add(2 * time.Hour)},
		{ID: "r2", NoteID: "n1", UserID: "alice", RemindAt: now.Add(time.Hour)},
		{ID: "r3", NoteID: "n2", UserID: "bob", RemindAt: now},
	} {
		if err := s.Reminders().Create(ctx, r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	reminders, err := s.Reminders().ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(reminders) != 2 {
		t.Fatalf("ListByUser() len = %d, want 2", len(reminders))
	}
	if reminders[0].ID != "r2" || reminders[1].ID != "r1" {
		t.Errorf("order = [%s %s], want [r2 r1]", reminders[0].ID, reminders[1].ID)
	}
	if reminders[0].NoteTitle == nil || *reminders[0].NoteTitle != "title n1" {
		t.Errorf("NoteTitle = %v", reminders[0].NoteTitle)
	}
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedNote(t, s, "n1", "alice")

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.Revisions().Create(ctx, &domain.RevisionHistory{ID: "rev1", NoteID: "n1", NewContent: "x"}); err != nil {
			return err
		}
		if _, err := tx.Reminders().DeleteByNote(ctx, "n1"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, want boom", err)
	}

	revisions, err := s.Revisions().ListByNote(ctx, "n1")
	if err != nil {
		t.Fatalf("ListByNote() error = %v", err)
	}
	if len(revisions) != 0 {
		t.Errorf("revisions after rollback = %d, want 0", len(revisions))
	}
}

func TestAttachmentRepository_KnownPaths(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedNote(t, s, "n1", "alice")

	if err := s.Attachments().Create(ctx, &domain.Attachment{ID: "a1", NoteID: "n1", Filename: "x.png", FilePath: "file-1.png"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	known, err := s.Attachments().KnownPaths(ctx, []string{"file-1.png", "file-2.png"})
	if err != nil {
		t.Fatalf("KnownPaths() error = %v", err)
	}
	if !known["file-1.png"] || known["file-2.png"] {
		t.Errorf("KnownPaths() = %v", known)
	}

	n, err := s.Attachments().DeleteByNote(ctx, "n1")
	if err != nil || n != 1 {
		t.Errorf("DeleteByNote() = %d, %v", n, err)
	}
}
