package repository

import (
	"context"
	"fmt"
	"time"

	"pensario-server/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// FindByIDForUpdate locks the row where the backend supports it.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Note, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type noteRepository struct {
	db *gorm.DB
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", translate(err))
	}
	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *noteRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Note, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(q, id)
}

func (r *noteRepository) find(q *gorm.DB, id string) (*domain.Note, error) {
	var note domain.Note
	if err := q.Where("id = ?", id).Take(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to find note: %w", translate(err))
	}
	return &note, nil
}

func (r *noteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", translate(err))
	}
	return notes, nil
}

// Update writes the mutable columns only; ownership and creation time never change here.
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	note.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Note{}).
		Where("id = ?", note.ID).
		Updates(map[string]interface{}{
			"title":             note.Title,
			"content":           note.Content,
			"category":          note.Category,
			"consultation_date": note.ConsultationDate,
			"updated_at":        note.UpdatedAt,
		})
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	if err := affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Note{})); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
