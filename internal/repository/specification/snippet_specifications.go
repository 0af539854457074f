package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByFileName struct {
	FileName string
}

func (s ByFileName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_name = ?", s.FileName)
}

type BySnippetID struct {
	SnippetID uuid.UUID
}

func (s BySnippetID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("snippet_id = ?", s.SnippetID)
}
