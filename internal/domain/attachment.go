package domain

import "time"

type Attachment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	NoteID    string    `json:"note_id" gorm:"size:36;not null;index"`
	Filename  string    `json:"filename" gorm:"size:255;not null"`
	FilePath  string    `json:"-" gorm:"size:255;not null;uniqueIndex"`
	FileType  string    `json:"file_type" gorm:"size:127"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"uploaded_at" gorm:"index"`
}
