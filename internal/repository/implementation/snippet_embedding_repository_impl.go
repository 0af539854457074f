package implementation

import (
	"context"

	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/mapper"
	"code-analyzer-be/internal/model"
	"code-analyzer-be/internal/repository/contract"
	"code-analyzer-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type SnippetEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SnippetEmbeddingMapper
}

func NewSnippetEmbeddingRepository(db *gorm.DB) contract.SnippetEmbeddingRepository {
	return &SnippetEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewSnippetEmbeddingMapper(),
	}
}

func (r *SnippetEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SnippetEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.SnippetEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *SnippetEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.SnippetEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *SnippetEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SnippetEmbedding{}, id).Error
}

func (r *SnippetEmbeddingRepositoryImpl) DeleteBySnippetId(ctx context.Context, snippetId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("snippet_id = ?", snippetId).Delete(&model.SnippetEmbedding{}).Error
}

func (r *SnippetEmbeddingRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	subQuery := r.db.Table("snippets").Select("id").Where("chat_session_id = ?", sessionId)
	return r.db.WithContext(ctx).Where("snippet_id IN (?)", subQuery).Delete(&model.SnippetEmbedding{}).Error
}

func (r *SnippetEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SnippetEmbedding, error) {
	var models []*model.SnippetEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SnippetEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.SnippetEmbedding{}).Count(&count).Error
	return count, err
}

func (r *SnippetEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID) ([]*entity.SnippetEmbedding, error) {
	if limit <= 0 {
		limit = 4
	}
	var models []*model.SnippetEmbedding

	// pgvector cosine distance: embedding_value <=> vector
	// Join with snippets to scope the search to one session.
	err := r.db.WithContext(ctx).
		Joins("JOIN snippets ON snippets.id = snippet_embeddings.snippet_id").
		Where("snippets.chat_session_id = ?", sessionId).
		Where("snippet_embeddings.deleted_at IS NULL").
		Where("snippets.deleted_at IS NULL").
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold
func (r *SnippetEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID, threshold float64) ([]*contract.ScoredSnippetEmbedding, error) {
	if limit <= 0 {
		limit = 4
	}

	// Cosine distance in pgvector is 1 - cosine_similarity,
	// so 1 - (embedding_value <=> query_vector) recovers the similarity.
	type result struct {
		model.SnippetEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("snippet_embeddings").
		Select("snippet_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN snippets ON snippets.id = snippet_embeddings.snippet_id").
		Where("snippets.chat_session_id = ?", sessionId).
		Where("snippet_embeddings.deleted_at IS NULL").
		Where("snippets.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredSnippetEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredSnippetEmbedding{
			Embedding:  r.mapper.ToEntity(&res.SnippetEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
