package implementation

import (
	"context"
	"errors"

	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/mapper"
	"code-analyzer-be/internal/model"
	"code-analyzer-be/internal/repository/contract"
	"code-analyzer-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SnippetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SnippetMapper
}

func NewSnippetRepository(db *gorm.DB) contract.SnippetRepository {
	return &SnippetRepositoryImpl{
		db:     db,
		mapper: mapper.NewSnippetMapper(),
	}
}

func (r *SnippetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SnippetRepositoryImpl) Create(ctx context.Context, snippet *entity.Snippet) error {
	m := r.mapper.ToModel(snippet)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*snippet = *r.mapper.ToEntity(m)
	return nil
}

func (r *SnippetRepositoryImpl) Update(ctx context.Context, snippet *entity.Snippet) error {
	m := r.mapper.ToModel(snippet)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*snippet = *r.mapper.ToEntity(m)
	return nil
}

func (r *SnippetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Snippet{}, id).Error
}

func (r *SnippetRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).Delete(&model.Snippet{}).Error
}

func (r *SnippetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Snippet, error) {
	var m model.Snippet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SnippetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Snippet, error) {
	var models []*model.Snippet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SnippetRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Snippet{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
