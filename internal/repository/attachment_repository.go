package repository

import (
	"context"
	"fmt"

	"pensario-server/internal/domain"

	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	FindByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByNote(ctx context.Context, noteID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
	DeleteByNote(ctx context.Context, noteID string) (int64, error)
	// KnownPaths reports which of paths are referenced by an attachment row.
	KnownPaths(ctx context.Context, paths []string) (map[string]bool, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return fmt.Errorf("failed to create attachment: %w", translate(err))
	}
	return nil
}

func (r *attachmentRepository) FindByID(ctx context.Context, id string) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&attachment).Error; err != nil {
		return nil, fmt.Errorf("failed to find attachment: %w", translate(err))
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByNote(ctx context.Context, noteID string) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	err := r.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("created_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", translate(err))
	}
	return attachments, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	if err := affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Attachment{})); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func (r *attachmentRepository) DeleteByNote(ctx context.Context, noteID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&domain.Attachment{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete attachments by note: %w", translate(result.Error))
	}
	return result.RowsAffected, nil
}

const knownPathsBatch = 500

func (r *attachmentRepository) KnownPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	known := make(map[string]bool, len(paths))
	for start := 0; start < len(paths); start += knownPathsBatch {
		end := start + knownPathsBatch
		if end > len(paths) {
			end = len(paths)
		}

		var found []string
		err := r.db.WithContext(ctx).Model(&domain.Attachment{}).
			Where("file_path IN ?", paths[start:end]).
			Pluck("file_path", &found).Error
		if err != nil {
			return nil, fmt.Errorf("failed to look up attachment paths: %w", translate(err))
		}
		for _, p := range found {
			known[p] = true
		}
	}
	return known, nil
}
