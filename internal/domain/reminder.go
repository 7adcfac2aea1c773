package domain

import "time"

type Reminder struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	NoteID    string    `json:"note_id" gorm:"size:36;not null;index"`
	UserID    string    `json:"-" gorm:"size:36;not null;index"`
	RemindAt  time.Time `json:"remind_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// NoteTitle is filled by the caller-wide listing only.
	NoteTitle *string `json:"note_title,omitempty" gorm:"-"`
}

type CreateReminderRequest struct {
	NoteID   string     `json:"note_id" validate:"required"`
	RemindAt *time.Time `json:"remind_at" validate:"required"`
}

type UpdateReminderRequest struct {
	RemindAt *time.Time `json:"remind_at" validate:"required"`
}
