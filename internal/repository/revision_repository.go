package repository

import (
	"context"
	"fmt"

	"pensario-server/internal/domain"

	"gorm.io/gorm"
)

// RevisionRepository has no Update: revisions are append-only.
type RevisionRepository interface {
	Create(ctx context.Context, revision *domain.RevisionHistory) error
	FindByID(ctx context.Context, id string) (*domain.RevisionHistory, error)
	ListByNote(ctx context.Context, noteID string) ([]*domain.RevisionHistory, error)
	Delete(ctx context.Context, id string) error
	DeleteByNote(ctx context.Context, noteID string) (int64, error)
}

type revisionRepository struct {
	db *gorm.DB
}

func (r *revisionRepository) Create(ctx context.Context, revision *domain.RevisionHistory) error {
	if err := r.db.WithContext(ctx).Create(revision).Error; err != nil {
		return fmt.Errorf("failed to save revision: %w", translate(err))
	}
	return nil
}

func (r *revisionRepository) FindByID(ctx context.Context, id string) (*domain.RevisionHistory, error) {
	var revision domain.RevisionHistory
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&revision).Error; err != nil {
		return nil, fmt.Errorf("failed to find revision: %w", translate(err))
	}
	return &revision, nil
}

func (r *revisionRepository) ListByNote(ctx context.Context, noteID string) ([]*domain.RevisionHistory, error) {
	var revisions []*domain.RevisionHistory
	err := r.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("created_at DESC").
		Find(&revisions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", translate(err))
	}
	return revisions, nil
}

func (r *revisionRepository) Delete(ctx context.Context, id string) error {
	if err := affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.RevisionHistory{})); err != nil {
		return fmt.Errorf("failed to delete revision: %w", err)
	}
	return nil
}

func (r *revisionRepository) DeleteByNote(ctx context.Context, noteID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&domain.RevisionHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete revisions by note: %w", translate(result.Error))
	}
	return result.RowsAffected, nil
}
