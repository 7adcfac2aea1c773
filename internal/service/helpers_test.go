package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"pensario-server/internal/database"
	"pensario-server/internal/domain"
	"pensario-server/internal/repository"
	"pensario-server/internal/storage"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

const testTimeout = 5 * time.Second

func newTestStore(t *testing.T) repository.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	return repository.NewStore(db)
}

func newTestBlobs(t *testing.T) *storage.LocalStore {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	return blobs
}

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func newTestAuthService(t *testing.T, users repository.UserRepository) *AuthService {
	t.Helper()
	log, _ := newTestLogger()
	svc, err := NewAuthService(users, AuthConfig{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
		Timeout:    testTimeout,
	}, log)
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}
	return svc
}

func createNote(t *testing.T, svc *NoteService, userID, title, content string) *domain.Note {
	t.Helper()
	note, err := svc.Create(context.Background(), userID, &domain.CreateNoteRequest{Title: title, Content: content})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return note
}

func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("KindOf(%v) = %s, want %s", err, got, want)
	}
}

func warnings(hook *logtest.Hook, prefix string) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.HasPrefix(e.Message, prefix) {
			out = append(out, e)
		}
	}
	return out
}

var errInjected = errors.New("injected failure")

// faultyStore wraps a Store and fails selected writes, inside transactions too.
type faultyStore struct {
	repository.Store
	failRevisionCreate   bool
	failAttachmentCreate bool
}

func (f *faultyStore) Revisions() repository.RevisionRepository {
	if f.failRevisionCreate {
		return failingRevisions{f.Store.Revisions()}
	}
	return f.Store.Revisions()
}

func (f *faultyStore) Attachments() repository.AttachmentRepository {
	if f.failAttachmentCreate {
		return failingAttachments{f.Store.Attachments()}
	}
	return f.Store.Attachments()
}

func (f *faultyStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return f.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&faultyStore{
			Store:                tx,
			failRevisionCreate:   f.failRevisionCreate,
			failAttachmentCreate: f.failAttachmentCreate,
		})
	})
}

type failingRevisions struct {
	repository.RevisionRepository
}

func (failingRevisions) Create(context.Context, *domain.RevisionHistory) error {
	return errInjected
}

type failingAttachments struct {
	repository.AttachmentRepository
}

func (failingAttachments) Create(context.Context, *domain.Attachment) error {
	return errInjected
}

// failingBlobs refuses removals with an error other than ErrNotExist.
type failingBlobs struct {
	storage.BlobStore
}

func (failingBlobs) Remove(context.Context, string) error {
	return errInjected
}
