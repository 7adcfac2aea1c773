package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"pensario-server/internal/domain"
	"pensario-server/internal/metrics"
	"pensario-server/internal/repository"
	"pensario-server/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Upload is a file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachmentService moves an upload through validate, authorize, store and
// record. A file is only ever written after validation and authorization pass.
type AttachmentService struct {
	store   repository.Store
	blobs   storage.BlobStore
	policy  *AttachmentPolicy
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewAttachmentService(store repository.Store, blobs storage.BlobStore, policy *AttachmentPolicy, timeout time.Duration, log logrus.FieldLogger) *AttachmentService {
	return &AttachmentService{
		store:   store,
		blobs:   blobs,
		policy:  policy,
		timeout: timeout,
		log:     log,
	}
}

func (s *AttachmentService) Policy() *AttachmentPolicy {
	return s.policy
}

func (s *AttachmentService) Upload(ctx context.Context, userID, noteID string, upload *Upload) (*domain.Attachment, error) {
	if noteID == "" {
		return nil, invalidInput("note_id is required")
	}
	file, err := s.Validate(upload)
	if err != nil {
		return nil, err
	}
	return s.Store(ctx, userID, noteID, file)
}

// Validate reads the upload body once, up to one byte past the size limit.
func (s *AttachmentService) Validate(upload *Upload) (*ValidatedFile, error) {
	if upload == nil || upload.Body == nil {
		return nil, invalidInput("file is required")
	}
	file, err := s.policy.Validate(upload.Filename, upload.ContentType, upload.Body)
	if err != nil {
		metrics.AttachmentUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	return file, nil
}

// Store authorizes the caller against the note, then writes and records a
// file that already passed Validate.
func (s *AttachmentService) Store(ctx context.Context, userID, noteID string, file *ValidatedFile) (*domain.Attachment, error) {
	if noteID == "" {
		return nil, invalidInput("note_id is required")
	}
	if file == nil {
		return nil, invalidInput("file is required")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(ctx, s.store, userID, ResourceNote, noteID)
	if err != nil {
		return nil, err
	}
	note := handle.Note

	name, written, err := s.blobs.Save(ctx, file.Ext, bytes.NewReader(file.Data))
	if err != nil {
		metrics.AttachmentUploads.WithLabelValues("failed").Inc()
		return nil, classify(err, "store attachment")
	}

	attachment := &domain.Attachment{
		ID:        uuid.New().String(),
		NoteID:    note.ID,
		Filename:  file.Filename,
		FilePath:  name,
		FileType:  file.MediaType,
		Size:      written,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Attachments().Create(ctx, attachment); err != nil {
		metrics.AttachmentUploads.WithLabelValues("orphaned").Inc()
		s.log.WithFields(logrus.Fields{
			"note_id": note.ID,
			"path":    name,
			"size":    written,
			"error":   err.Error(),
		}).Warn("orphaned file: attachment stored but not recorded")
		return nil, classify(err, "record attachment")
	}

	metrics.AttachmentUploads.WithLabelValues("recorded").Inc()
	return attachment, nil
}

func (s *AttachmentService) ListByNote(ctx context.Context, userID, noteID string) ([]*domain.Attachment, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	note, err := OwnedNote(ctx, s.store.Notes(), userID, noteID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.Attachments().ListByNote(ctx, note.ID)
	if err != nil {
		return nil, classify(err, "list attachments")
	}
	return attachments, nil
}

// Open returns the attachment and a reader over its content. The caller closes
// the reader. The timeout covers the lookup only, not the transfer.
func (s *AttachmentService) Open(ctx context.Context, userID, attachmentID string) (*domain.Attachment, io.ReadCloser, error) {
	lookupCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(lookupCtx, s.store, userID, ResourceAttachment, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	attachment := handle.Attachment

	rc, err := s.blobs.Open(ctx, attachment.FilePath)
	if err != nil {
		if isMissingBlob(err) {
			s.log.WithFields(logrus.Fields{
				"attachment_id": attachment.ID,
				"path":          attachment.FilePath,
			}).Error("attachment record points at a missing file")
			return nil, nil, notFound(ResourceAttachment)
		}
		return nil, nil, classify(err, "open attachment")
	}
	return attachment, rc, nil
}

// Delete removes the file first and the record second, so an interruption
// leaves at worst a record whose download reports NotFound.
func (s *AttachmentService) Delete(ctx context.Context, userID, attachmentID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	handle, err := Authorize(ctx, s.store, userID, ResourceAttachment, attachmentID)
	if err != nil {
		return err
	}
	attachment := handle.Attachment

	if err := s.blobs.Remove(ctx, attachment.FilePath); err != nil && !isMissingBlob(err) {
		return classify(err, "remove attachment file")
	}
	if err := s.store.Attachments().Delete(ctx, attachment.ID); err != nil {
		return lookup(err, ResourceAttachment, "delete attachment")
	}
	return nil
}
