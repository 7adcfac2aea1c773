package repository

import (
	"context"
	"fmt"
	"time"

	"pensario-server/internal/domain"

	"gorm.io/gorm"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	FindByID(ctx context.Context, id string) (*domain.Reminder, error)
	// ListByUser joins through notes so ownership follows the current note owner.
	ListByUser(ctx context.Context, userID string) ([]*domain.Reminder, error)
	ListByNote(ctx context.Context, noteID string) ([]*domain.Reminder, error)
	Update(ctx context.Context, reminder *domain.Reminder) error
	Delete(ctx context.Context, id string) error
	DeleteByNote(ctx context.Context, noteID string) (int64, error)
}

type reminderRepository struct {
	db *gorm.DB
}

type reminderWithTitle struct {
	domain.Reminder `gorm:"embedded"`
	Title           string `gorm:"column:note_title"`
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("failed to create reminder: %w", translate(err))
	}
	return nil
}

func (r *reminderRepository) FindByID(ctx context.Context, id string) (*domain.Reminder, error) {
	var reminder domain.Reminder
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&reminder).Error; err != nil {
		return nil, fmt.Errorf("failed to find reminder: %w", translate(err))
	}
	return &reminder, nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reminder, error) {
	var rows []reminderWithTitle
	err := r.db.WithContext(ctx).
		Table("reminders").
		Select("reminders.*, notes.title AS note_title").
		Joins("JOIN notes ON notes.id = reminders.note_id").
		Where("notes.user_id = ?", userID).
		Order("reminders.remind_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", translate(err))
	}

	reminders := make([]*domain.Reminder, 0, len(rows))
	for i := range rows {
		reminder := rows[i].Reminder
		title := rows[i].Title
		reminder.NoteTitle = &title
		reminders = append(reminders, &reminder)
	}
	return reminders, nil
}

func (r *reminderRepository) ListByNote(ctx context.Context, noteID string) ([]*domain.Reminder, error) {
	var reminders []*domain.Reminder
	err := r.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("remind_at ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders by note: %w", translate(err))
	}
	return reminders, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	reminder.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Reminder{}).
		Where("id = ?", reminder.ID).
		Updates(map[string]interface{}{
			"remind_at":  reminder.RemindAt,
			"user_id":    reminder.UserID,
			"updated_at": reminder.UpdatedAt,
		})
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Delete(ctx context.Context, id string) error {
	if err := affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Reminder{})); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) DeleteByNote(ctx context.Context, noteID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&domain.Reminder{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete reminders by note: %w", translate(result.Error))
	}
	return result.RowsAffected, nil
}
