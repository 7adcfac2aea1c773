package domain

import "time"

// RevisionHistory is an append-only before/after snapshot of a note's content.
type RevisionHistory struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	NoteID     string    `json:"note_id" gorm:"size:36;not null;index"`
	OldContent string    `json:"old_content" gorm:"type:text"`
	NewContent string    `json:"new_content" gorm:"type:text"`
	CreatedAt  time.Time `json:"revised_at" gorm:"index"`
}
