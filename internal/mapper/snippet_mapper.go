package mapper

import (
	"time"

	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SnippetMapper struct{}

func NewSnippetMapper() *SnippetMapper {
	return &SnippetMapper{}
}

func (m *SnippetMapper) ToEntity(s *model.Snippet) *entity.Snippet {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Snippet{
		Id:            s.Id,
		FileName:      s.FileName,
		Code:          s.Code,
		Position:      s.Position,
		Analysis:      []byte(s.Analysis),
		ChatSessionId: s.ChatSessionId,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     s.DeletedAt.Valid,
	}
}

func (m *SnippetMapper) ToModel(s *entity.Snippet) *model.Snippet {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Snippet{
		Id:            s.Id,
		FileName:      s.FileName,
		Code:          s.Code,
		Position:      s.Position,
		Analysis:      datatypes.JSON(s.Analysis),
		ChatSessionId: s.ChatSessionId,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *SnippetMapper) ToEntities(snippets []*model.Snippet) []*entity.Snippet {
	entities := make([]*entity.Snippet, len(snippets))
	for i, s := range snippets {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
