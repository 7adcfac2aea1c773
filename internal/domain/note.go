package domain

import "time"

type Note struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	UserID           string     `json:"-" gorm:"size:36;not null;index"`
	Title            string     `json:"title" gorm:"size:128;not null"`
	Content          string     `json:"content" gorm:"type:text"`
	Category         *string    `json:"category" gorm:"size:64"`
	ConsultationDate *time.Time `json:"consultation_date"`
	CreatedAt        time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title            string     `json:"title" validate:"required,max=128"`
	Content          string     `json:"content"`
	Category         *string    `json:"category" validate:"omitempty,max=64"`
	ConsultationDate *time.Time `json:"consultation_date"`
}

// UpdateNoteRequest distinguishes omitted fields from explicit nulls so partial
// updates leave untouched columns alone.
type UpdateNoteRequest struct {
	Title            Field[string]    `json:"title"`
	Content          Field[string]    `json:"content"`
	Category         Field[string]    `json:"category"`
	ConsultationDate Field[time.Time] `json:"consultation_date"`
}
